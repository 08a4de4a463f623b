// Command seed populates a development database with sample cars and
// patients. It goes through the service layer so defaults, validation and
// unique constraints apply exactly as they do in production.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/internal/cars"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/internal/patients"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/database"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/types"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel)

	db, err := database.NewConnection(&cfg.Mongo, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to document store: %v", err)
	}
	defer db.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("Failed to ensure indexes: %v", err)
	}

	carService := cars.NewService(cars.NewRepository(db, logger), logger, cfg.API)
	patientService := patients.NewService(patients.NewRepository(db, logger), logger, cfg.API)

	for _, car := range sampleCars() {
		if _, err := carService.Create(ctx, car); err != nil {
			if types.IsConflict(err) {
				logger.Infof("Car %s already seeded, skipping", car.Name)
				continue
			}
			logger.Fatalf("Failed to seed car %s: %v", car.Name, err)
		}
		logger.Infof("Seeded car %s", car.Name)
	}

	for _, patient := range samplePatients() {
		if _, err := patientService.Create(ctx, patient); err != nil {
			if types.IsConflict(err) {
				logger.Infof("Patient %s already seeded, skipping", patient.PersonalInfo.Name)
				continue
			}
			logger.Fatalf("Failed to seed patient %s: %v", patient.PersonalInfo.Name, err)
		}
		logger.Infof("Seeded patient %s", patient.PersonalInfo.Name)
	}

	logger.Info("Seeding completed")
}

func sampleCars() []*types.Car {
	return []*types.Car{
		{
			Name:         "CARRO 1",
			LicensePlate: "ABC-1234",
			Model:        "Fiat Uno",
			Driver: types.Driver{
				Name:          "João Silva",
				Phone:         "21999887766",
				LicenseNumber: "12345678901",
				Active:        true,
			},
			Capacity: 8,
			Zones:    []string{"Copacabana", "Ipanema", "Leblon"},
			WorkingHours: types.WorkingHours{
				StartTime:     "07:00",
				EndTime:       "18:00",
				BreakStart:    "12:00",
				BreakDuration: 60,
			},
		},
		{
			Name:         "CARRO 2",
			LicensePlate: "DEF-5678",
			Model:        "Honda Civic",
			Driver: types.Driver{
				Name:          "Maria Santos",
				Phone:         "21988776655",
				LicenseNumber: "10987654321",
				Active:        true,
			},
			Capacity: 10,
			Zones:    []string{"Barra da Tijuca", "Recreio", "Jacarepaguá"},
			WorkingHours: types.WorkingHours{
				StartTime:     "06:30",
				EndTime:       "17:30",
				BreakStart:    "12:30",
				BreakDuration: 60,
			},
		},
	}
}

func samplePatients() []*types.Patient {
	lastCollection := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	return []*types.Patient{
		{
			PersonalInfo: types.PersonalInfo{
				Name:      "Ana Costa Silva",
				CPF:       "12345678901",
				BirthDate: time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
				Gender:    "F",
				Email:     "ana.costa@email.com",
			},
			Contacts: []types.Contact{
				{Type: "mobile", Value: "21987654321", Primary: true},
				{Type: "home", Value: "2133334444", Primary: false},
			},
			Address: types.Address{
				Street:       "Rua das Palmeiras, 230",
				Neighborhood: "Recreio dos Bandeirantes",
				City:         "Rio de Janeiro",
				State:        "RJ",
				ZipCode:      "22795-080",
				Coordinates:  []float64{-23.0123, -43.4567},
				AccessNotes:  "Portão azul, 2º andar",
			},
			HealthPlan: &types.HealthPlan{
				Provider:   "Bradesco Saúde",
				CardNumber: "123456789",
				PlanType:   "Premium",
				Coverage:   []string{"laboratory", "home_collection"},
			},
			Preferences: types.Preferences{
				PreferredTimes:       []string{"morning"},
				SpecialRequirements:  "Paciente idoso - cuidado especial",
				FastingExams:         true,
				HomeAccessDifficulty: types.AccessEasy,
			},
			Tags: []string{"regular", "elderly", "easy_access"},
			Analytics: types.PatientAnalytics{
				Frequency:            types.FrequencyRegular,
				SeasonalPattern:      "consistent",
				NoShowRate:           0.05,
				RescheduleRate:       0.10,
				AverageExamsPerVisit: 3.2,
				TotalCollections:     15,
				LastCollectionDate:   &lastCollection,
				RiskScore:            types.RiskScoreLow,
			},
		},
		{
			PersonalInfo: types.PersonalInfo{
				Name:      "Carlos Oliveira",
				CPF:       "10987654321",
				BirthDate: time.Date(1978, 7, 22, 0, 0, 0, 0, time.UTC),
				Gender:    "M",
				Email:     "carlos.oliveira@email.com",
			},
			Contacts: []types.Contact{
				{Type: "mobile", Value: "21976543210", Primary: true},
			},
			Address: types.Address{
				Street:       "Av. das Américas, 1500",
				Neighborhood: "Barra da Tijuca",
				City:         "Rio de Janeiro",
				State:        "RJ",
				ZipCode:      "22640-100",
				Coordinates:  []float64{-23.0045, -43.3654},
			},
			HealthPlan: &types.HealthPlan{
				Provider:              "Unimed",
				CardNumber:            "987654321",
				PlanType:              "Standard",
				Coverage:              []string{"laboratory"},
				AuthorizationRequired: true,
				Copay:                 25.0,
			},
			Preferences: types.Preferences{
				PreferredTimes:       []string{"afternoon"},
				FastingExams:         true,
				HomeAccessDifficulty: types.AccessModerate,
			},
			Tags: []string{"occasional"},
			Analytics: types.PatientAnalytics{
				Frequency:            types.FrequencyOccasional,
				RescheduleRate:       0.2,
				AverageExamsPerVisit: 2.0,
				TotalCollections:     3,
				RiskScore:            types.RiskScoreMedium,
			},
		},
	}
}
