package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/valiant-11/psu-enrollment-api/internal/models"
	"github.com/valiant-11/psu-enrollment-api/internal/repository"
	"github.com/valiant-11/psu-enrollment-api/pkg/config"
	"github.com/valiant-11/psu-enrollment-api/pkg/database"
)

type fixture struct {
	Courses  []models.Course  `json:"courses"`
	Subjects []models.Subject `json:"subjects"`
	Students []models.Student `json:"students"`
}

func main() {
	var (
		fixturePath string
		timeout     time.Duration
	)

	flag.StringVar(&fixturePath, "fixture", filepath.Join("scripts", "seed", "fixture.json"), "Path to JSON fixture file")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Seeding timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	fx, err := loadFixture(fixturePath)
	if err != nil {
		log.Fatalf("failed to load fixture: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	courses := repository.NewCourseRepository(db)
	subjects := repository.NewSubjectRepository(db)
	students := repository.NewStudentRepository(db)

	var seeded int
	for i := range fx.Courses {
		if err := courses.Create(ctx, &fx.Courses[i]); err != nil {
			log.Fatalf("failed to seed course %s: %v", fx.Courses[i].Code, err)
		}
		seeded++
	}
	for i := range fx.Subjects {
		if err := subjects.Create(ctx, &fx.Subjects[i]); err != nil {
			log.Fatalf("failed to seed subject %s: %v", fx.Subjects[i].Code, err)
		}
		seeded++
	}
	for i := range fx.Students {
		if err := students.Create(ctx, &fx.Students[i]); err != nil {
			log.Fatalf("failed to seed student %s: %v", fx.Students[i].StudentNumber, err)
		}
		seeded++
	}

	fmt.Printf("Seeded %d rows from %s\n", seeded, fixturePath)
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	if len(fx.Courses) == 0 && len(fx.Subjects) == 0 && len(fx.Students) == 0 {
		return nil, fmt.Errorf("no rows defined in %s", path)
	}
	return &fx, nil
}
