package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/alextreichler/lessonshop/internal/config"
	"github.com/alextreichler/lessonshop/internal/images"
	"github.com/alextreichler/lessonshop/internal/lessonapi"
	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/alextreichler/lessonshop/internal/store"
)

const usage = "expected 'migrate', 'seed', 'add-lesson' or 'stats' subcommand"

func main() {
	addLessonCmd := flag.NewFlagSet("add-lesson", flag.ExitOnError)
	topic := addLessonCmd.String("topic", "", "Lesson topic")
	location := addLessonCmd.String("location", "", "Where the lesson takes place")
	price := addLessonCmd.Float64("price", 0, "Price per seat")
	space := addLessonCmd.Int("space", 5, "Number of seats")
	imagePath := addLessonCmd.String("image", "", "PNG or JPEG picture to import")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		db := openStore(cfg)
		defer db.Close()
		fmt.Printf("Database %s is up to date.\n", cfg.DBPath)
	case "seed":
		db := openStore(cfg)
		defer db.Close()
		n, err := db.SeedLessons(ctx, lessonapi.DefaultLessons)
		if err != nil {
			log.Fatalf("Failed to seed lessons: %v", err)
		}
		fmt.Printf("Added %d lessons.\n", n)
	case "add-lesson":
		addLessonCmd.Parse(os.Args[2:])
		if *topic == "" || *location == "" || *price < 0 || *space < 0 {
			fmt.Println("topic and location are required, price and space must not be negative")
			addLessonCmd.PrintDefaults()
			os.Exit(1)
		}
		lesson := &models.Lesson{Topic: *topic, Location: *location, Price: *price, Space: *space}
		if *imagePath != "" {
			if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
				log.Fatalf("Failed to create images directory: %v", err)
			}
			name, err := images.Import(*imagePath, cfg.ImagesDir)
			if err != nil {
				log.Fatalf("Failed to import image: %v", err)
			}
			lesson.Image = name
		}
		db := openStore(cfg)
		defer db.Close()
		if err := db.CreateLesson(ctx, lesson); err != nil {
			log.Fatalf("Failed to create lesson: %v", err)
		}
		fmt.Printf("Lesson '%s' created with id %s.\n", lesson.Topic, lesson.ID)
	case "stats":
		db := openStore(cfg)
		defer db.Close()
		printStats(ctx, db)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) *store.Store {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return db
}

func printStats(ctx context.Context, db *store.Store) {
	stats, err := db.GetDashboardStats(ctx)
	if err != nil {
		log.Fatalf("Failed to load stats: %v", err)
	}
	fmt.Printf("Lessons: %d  Orders: %d  Seats booked: %d\n\n", stats.TotalLessons, stats.TotalOrders, stats.TotalSeats)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOPIC\tBOOKED\tSPACE LEFT")
	for _, b := range stats.LessonBookings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", b.LessonID, b.Topic, b.Booked, b.Space)
	}
	tw.Flush()
}
