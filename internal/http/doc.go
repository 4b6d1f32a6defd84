// Package http provides HTTP handlers and middleware for the condominium portal API.
//
// The router exposes the following endpoints:
//   - POST /auth/sign-in: opens a session. Body: {"email","password"}. Response:
//     {"token","expires_at","user","profile"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /auth/sign-up: registers a resident account. The caller stays signed out.
//   - POST /auth/sign-out: ends the current session and clears the cookie. Signing
//     out without a session is a no-op.
//   - GET /auth/session: the resolved user and profile of the caller, if any.
//   - POST /auth/refresh: rotates the session token.
//   - GET /navigation: the navigation sections the caller's role may see.
//   - GET /areas, GET /areas/{id}, GET /extras, POST /areas/{id}/quote: common
//     area catalog and price quotes. POST /areas and PUT /areas/{id} are limited
//     to syndics and administrators.
//   - GET /reservations, POST /reservations, GET /reservations/calendar,
//     POST /reservations/{id}/cancel, POST /reservations/{id}/status: booking
//     endpoints. Status transitions are limited to syndics and administrators.
//   - GET /profiles, GET /profiles/{id}, PUT /profiles/{id}/role,
//     PUT /profiles/{id}/active: resident directory and administration.
//
// Every request passes through RequireSession, which resolves the session into an
// access.AuthContext. Protected routes are wrapped with Protect, which turns the
// access.Guard decision into a status code. Messages are served in Brazilian
// Portuguese unless the Accept-Language header prefers English.
//
// Request/response DTOs live alongside their respective handlers.
package http
