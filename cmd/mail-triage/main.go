package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/di"
	"github.com/mikey/llm-mail-triage/internal/mail"
	"github.com/mikey/llm-mail-triage/internal/prefs"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.TriageService,
	classifier core.Classifier,
	index core.VectorIndex,
) error {
	defer logger.Sync()

	// Read message from file or stdin
	var msgReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		msgReader = file
		logger.Info("Reading message from file", zap.String("file", flags.InputFile))
	} else {
		msgReader = os.Stdin
		logger.Info("Reading message from stdin")
	}

	// Parse message
	msg, err := mail.ParseMessage(bufio.NewReader(msgReader))
	if err != nil {
		logger.Fatal("Failed to parse message", zap.Error(err))
	}

	// Load user preferences
	preferences := prefs.Empty()
	if flags.PrefsFile != "" {
		preferences, err = prefs.Load(flags.PrefsFile)
		if err != nil {
			logger.Fatal("Failed to load preferences", zap.Error(err), zap.String("file", flags.PrefsFile))
		}
		logger.Info("Loaded user preferences",
			zap.String("file", flags.PrefsFile),
			zap.Int("allow", len(preferences.AllowSenders)),
			zap.Int("deny", len(preferences.DenySenders)),
			zap.Int("rules", len(preferences.Rules)))
	}

	// Print message summary
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("From: %s\n", msg.SenderEmail)
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Body length: %d bytes\n", len(msg.BodyText))
	fmt.Printf("\n")

	startTime := time.Now()
	result := service.Process(context.Background(), msg, preferences)
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("=== Results ===\n")
	fmt.Printf("Category: %s\n", result.Classification.Category)
	fmt.Printf("Priority: %s\n", result.Classification.Priority)
	fmt.Printf("Urgency score: %.2f\n", result.Classification.UrgencyScore)
	fmt.Printf("Sentiment: %s\n", result.Classification.Sentiment)
	fmt.Printf("Requires action: %t\n", result.Classification.RequiresAction)
	fmt.Printf("Reasoning: %s\n", result.Classification.Reasoning)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Requires review: %t\n", result.RequiresReview)
	fmt.Printf("Similar messages: %v\n", result.SimilarMessages)
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	if stopper, ok := index.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	return nil
}
