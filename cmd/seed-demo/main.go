package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/database"
	"github.com/stemsi/edutrack-backend/internal/logger"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/stemsi/edutrack-backend/internal/service"
)

var catalogue = []struct {
	code, name string
	credits    int
}{
	{"MA101", "Engineering Mathematics I", 4},
	{"PH101", "Engineering Physics", 3},
	{"CS101", "Programming in C", 4},
	{"EE101", "Basic Electrical Engineering", 3},
	{"MA102", "Engineering Mathematics II", 4},
	{"CS201", "Data Structures", 4},
	{"CS202", "Operating Systems", 3},
	{"CS203", "Database Management Systems", 4},
	{"CS301", "Computer Networks", 3},
	{"CS302", "Compiler Design", 4},
	{"CS303", "Software Engineering", 3},
	{"HS101", "Professional Communication", 2},
}

var grades = []string{"O", "A+", "A+", "A", "A", "B+", "B", "C", "U"}

func main() {
	var (
		email     string
		password  string
		semesters int
		seed      int64
	)
	flag.StringVar(&email, "email", "demo@edutrack.local", "Demo account email")
	flag.StringVar(&password, "password", "demo1234", "Demo account password")
	flag.IntVar(&semesters, "semesters", 4, "Number of semesters to create")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed for grades")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backends, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backends")
	}
	defer backends.Close()

	authService := service.NewAuthService(cfg, backends.Users, backends.Redis, log)
	semesterRepo := repository.NewSemesterRepository(backends.KV)
	fileService := service.NewFileService(cfg, repository.NewFileRepository(backends.KV), backends.Files, log)
	engine := aggregate.NewEngine(nil)
	semesterService := service.NewSemesterService(semesterRepo, fileService, engine, log)

	fmt.Printf("=== Seeding %d semesters for %s ===\n", semesters, email)

	user, err := backends.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		res, err := authService.Register(ctx, model.RegisterRequest{Email: email, Name: "Demo Student", Password: password})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo user")
		}
		u := res.User
		user = &u
		fmt.Printf("Created demo user with ID: %s\n", user.ID)
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up demo user")
	}

	rng := rand.New(rand.NewSource(seed))
	year := time.Now().Year() - (semesters+1)/2

	for n := 1; n <= semesters; n++ {
		start := year + (n-1)/2
		req := model.CreateSemesterRequest{
			Name:           fmt.Sprintf("Semester %d", n),
			AcademicYear:   fmt.Sprintf("%d-%02d", start, (start+1)%100),
			SemesterNumber: n,
			StudentName:    "Demo Student",
			Institution:    "EduTrack Institute of Technology",
			RollNumber:     "DEMO0001",
			UploadMethod:   model.UploadMethodManual,
			Subjects:       pickSubjects(rng),
		}

		sem, err := semesterService.Create(ctx, user.ID, req)
		if err != nil {
			log.Fatal().Err(err).Int("semester", n).Msg("Failed to create semester")
		}
		fmt.Printf("  %-11s SGPA %5.2f  credits %2d  subjects %d\n", sem.Name, sem.SGPA, sem.TotalCredits, sem.TotalSubjects)
	}

	all, err := semesterRepo.List(ctx, user.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list semesters")
	}
	fmt.Printf("CGPA over %d semesters: %.2f\n", len(all), engine.CGPA(all))
}

// pickSubjects draws five distinct subjects with random grades.
func pickSubjects(rng *rand.Rand) []model.SubjectInput {
	order := rng.Perm(len(catalogue))[:5]
	out := make([]model.SubjectInput, 0, len(order))
	for _, i := range order {
		c := catalogue[i]
		out = append(out, model.SubjectInput{
			Code:    c.code,
			Name:    c.name,
			Credits: c.credits,
			Grade:   grades[rng.Intn(len(grades))],
		})
	}
	return out
}
