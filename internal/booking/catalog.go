package booking

import "github.com/shopspring/decimal"

// DefaultAreas returns the common areas a new building starts with.
func DefaultAreas() []CommonArea {
	return []CommonArea{
		{
			ID:             "1",
			Name:           "Salão de Festas",
			Description:    "Amplo salão para eventos e comemorações",
			Capacity:       50,
			HourlyRate:     decimal.RequireFromString("80.00"),
			AvailableHours: Hours{Start: NewTimeOfDay(8, 0), End: NewTimeOfDay(23, 0)},
			Rules:          []string{"Não é permitido fumar", "Música até 22h", "Limpeza obrigatória"},
			Amenities:      []string{"Som ambiente", "Ar condicionado", "Cozinha equipada"},
			Status:         AreaActive,
		},
		{
			ID:             "2",
			Name:           "Churrasqueira",
			Description:    "Área gourmet com churrasqueira e pia",
			Capacity:       20,
			HourlyRate:     decimal.RequireFromString("40.00"),
			AvailableHours: Hours{Start: NewTimeOfDay(6, 0), End: NewTimeOfDay(22, 0)},
			Rules:          []string{"Limpeza obrigatória", "Não deixar brasas acesas"},
			Amenities:      []string{"Churrasqueira", "Pia", "Bancada"},
			Status:         AreaActive,
		},
		{
			ID:             "3",
			Name:           "Quadra Poliesportiva",
			Description:    "Quadra para futebol, vôlei e basquete",
			Capacity:       30,
			HourlyRate:     decimal.RequireFromString("25.00"),
			AvailableHours: Hours{Start: NewTimeOfDay(6, 0), End: NewTimeOfDay(22, 0)},
			Rules:          []string{"Uso de tênis obrigatório", "Horário máximo 2h"},
			Amenities:      []string{"Iluminação", "Vestiário", "Bebedouro"},
			Status:         AreaActive,
		},
	}
}

// DefaultExtras returns the add-ons offered with every reservation.
func DefaultExtras() []ExtraItem {
	return []ExtraItem{
		{ID: "1", Name: "Mesa adicional", Description: "Mesa redonda para 8 pessoas", Price: decimal.RequireFromString("25.00")},
		{ID: "2", Name: "Cadeiras extras (10 unidades)", Description: "Conjunto de 10 cadeiras", Price: decimal.RequireFromString("30.00")},
		{ID: "3", Name: "Sistema de som", Description: "Equipamento de som profissional", Price: decimal.RequireFromString("50.00")},
		{ID: "4", Name: "Decoração básica", Description: "Decoração temática simples", Price: decimal.RequireFromString("75.00")},
	}
}
