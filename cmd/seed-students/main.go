package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/labworks/labviva-backend/internal/config"
	"github.com/labworks/labviva-backend/internal/database"
	"github.com/labworks/labviva-backend/internal/logger"
	"github.com/labworks/labviva-backend/internal/model"
	"github.com/labworks/labviva-backend/internal/repository"
)

// Seeds a batch of student accounts for one faculty member. With -csv the
// rows come from a file (roll_no,name,email,section); without it a demo
// roster of 50 students is generated. Every account starts with its roll
// number as the password, forcing a change on first login.
func main() {
	var (
		facultyID int
		section   string
		csvPath   string
	)
	flag.IntVar(&facultyID, "faculty", 1, "Faculty ID that owns the seeded students")
	flag.StringVar(&section, "section", "A", "Section for generated demo students")
	flag.StringVar(&csvPath, "csv", "", "CSV file with roll_no,name,email,section rows")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)

	var students []model.Student
	if csvPath != "" {
		students, err = readRoster(csvPath, facultyID)
		if err != nil {
			log.Fatal().Err(err).Str("path", csvPath).Msg("Failed to read roster file")
		}
	} else {
		students = demoRoster(facultyID, section)
	}

	fmt.Printf("=== Seeding %d Students ===\n", len(students))

	for i := range students {
		hash, err := bcrypt.GenerateFromPassword([]byte(students[i].RollNo), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash initial password")
		}
		students[i].PasswordHash = string(hash)
		if (i+1)%10 == 0 {
			fmt.Printf("Prepared %d students...\n", i+1)
		}
	}

	inserted, err := studentRepo.BulkCreate(ctx, students)
	if err != nil {
		log.Fatal().Err(err).Msg("Bulk insert failed")
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", inserted, len(students))
}

func readRoster(path string, facultyID int) ([]model.Student, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 4

	var students []model.Student
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		// Skip a header row if present.
		if strings.EqualFold(record[0], "roll_no") {
			continue
		}
		students = append(students, model.Student{
			RollNo:    strings.TrimSpace(record[0]),
			Name:      strings.TrimSpace(record[1]),
			Email:     strings.TrimSpace(record[2]),
			Section:   strings.TrimSpace(record[3]),
			FacultyID: facultyID,
		})
	}
	return students, nil
}

func demoRoster(facultyID int, section string) []model.Student {
	names := []string{
		"Aarav Sharma", "Diya Patel", "Rohan Mehta", "Ananya Iyer", "Karan Singh",
		"Priya Nair", "Vikram Rao", "Sneha Kulkarni", "Arjun Desai", "Meera Joshi",
		"Rahul Verma", "Isha Gupta", "Siddharth Menon", "Tanvi Shah", "Aditya Pillai",
		"Kavya Reddy", "Nikhil Bhat", "Pooja Hegde", "Varun Chawla", "Riya Malhotra",
		"Akash Jain", "Shreya Mishra", "Manish Tiwari", "Divya Prasad", "Harsh Agarwal",
		"Neha Srinivasan", "Pranav Kapoor", "Aisha Khan", "Dev Chatterjee", "Nandini Bose",
		"Sameer Saxena", "Gauri Deshpande", "Yash Thakur", "Ritika Banerjee", "Kunal Shetty",
		"Anjali Pandey", "Vivek Murthy", "Swati Naik", "Rohit Kaul", "Lakshmi Venkatesan",
		"Abhishek Dubey", "Sakshi Raval", "Tarun Ghosh", "Pallavi Suresh", "Mohit Bansal",
		"Deepika Rawat", "Nitin Choudhary", "Charu Vaidya", "Suraj Pawar", "Ira Kamath",
	}

	students := make([]model.Student, 0, len(names))
	for i, name := range names {
		rollNo := fmt.Sprintf("CS%03d", i+1)
		email := fmt.Sprintf("%s@student.labviva.local", strings.ToLower(rollNo))
		students = append(students, model.Student{
			RollNo:    rollNo,
			Name:      name,
			Email:     email,
			Section:   section,
			FacultyID: facultyID,
		})
	}
	return students
}
