package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gametracker/internal/config"
	"gametracker/internal/database"
	"gametracker/internal/logging"
	"gametracker/internal/repository"
	"gametracker/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	cleanupCmd := flag.NewFlagSet("cleanup-sessions", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, "text")
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		db := openDatabase(ctx, cfg, logger)
		defer db.Close()
		handleExport(ctx, service.NewBackupService(db, logger), *exportOutput, logger)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		db := openDatabase(ctx, cfg, logger)
		defer db.Close()
		handleImport(ctx, service.NewBackupService(db, logger), *importInput, *importClear, logger)

	case "cleanup-sessions":
		cleanupCmd.Parse(os.Args[2:])
		db := openDatabase(ctx, cfg, logger)
		defer db.Close()
		authService := service.NewAuthService(repository.NewUserRepository(db), cfg.SessionDuration, logger)
		removed, err := authService.CleanupExpiredSessions(ctx)
		if err != nil {
			logger.Error("session cleanup failed", "error", err)
			os.Exit(1)
		}
		logger.Info("expired sessions removed", "count", removed)

	default:
		printUsage()
		os.Exit(1)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) *database.DB {
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Keep the schema current before touching data
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	return db
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string, logger *slog.Logger) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create output directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("exporting database", "output", outputPath)
	backup, err := backupService.Export(ctx, outputPath)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	var size int64
	if info, err := os.Stat(outputPath); err == nil {
		size = info.Size()
	}
	logger.Info("export complete",
		"users", len(backup.Users),
		"games", len(backup.Games),
		"play_sessions", len(backup.PlaySessions),
		"results", len(backup.Results),
		"bytes", size,
	)
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, replace bool, logger *slog.Logger) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		logger.Error("input file does not exist", "input", inputPath)
		os.Exit(1)
	}

	if replace {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		confirmation, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(confirmation) != "yes" {
			logger.Info("import cancelled")
			return
		}
	}

	logger.Info("importing database", "input", inputPath, "replace", replace)
	if err := backupService.Import(ctx, inputPath, replace); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("import complete")
}

func printUsage() {
	fmt.Println("Game Tracker operations tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  trackerctl export [options]       Export database to JSON file")
	fmt.Println("  trackerctl import [options]       Import database from JSON file")
	fmt.Println("  trackerctl cleanup-sessions       Delete expired login sessions")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  trackerctl export -output backups/today.json")
	fmt.Println("  trackerctl import -input backups/today.json")
	fmt.Println("  trackerctl import -input backups/today.json -clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./gametracker.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  CONFIG_FILE      Optional YAML configuration file")
}
