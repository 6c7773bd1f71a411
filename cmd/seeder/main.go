// Command seeder submits demo registrations against a running server, going
// through the same form lifecycle as the registration modal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mettlestate/tournament-site/internal/client"
	"github.com/mettlestate/tournament-site/internal/logging"
	"github.com/mettlestate/tournament-site/internal/logic"
	"github.com/mettlestate/tournament-site/internal/models"
)

var games = []string{"Valorant", "Apex Legends", "Fortnite", "PUBG", "Call of Duty", "Overwatch", "Counter-Strike"}

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "base URL of the tournament server")
	count := flag.Int("count", 5, "number of registrations to submit")
	prefix := flag.String("prefix", "SeedPlayer", "gamer tag prefix")
	display := flag.Duration("display", 0, "pause after each success, like the success view")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	level := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*level, "development")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	api := client.New(*apiURL, &http.Client{Timeout: *timeout})
	ctx := context.Background()

	before, err := api.Stats(ctx)
	if err != nil {
		sugar.Fatalw("Failed to read registration count", "url", *apiURL, "error", err)
	}
	sugar.Infow("Seeding registrations", "url", *apiURL, "count", *count, "current", before.Count, "max", before.Max)

	completed := make(chan models.RegistrationReceipt, 1)
	form := logic.NewForm(api, *display, func(r models.RegistrationReceipt) { completed <- r })
	defer form.Close()

	failed := 0
	for i := 1; i <= *count; i++ {
		values := models.RegistrationForm{
			FullName:     fmt.Sprintf("Seed Player %s", ordinal(i)),
			GamerTag:     fmt.Sprintf("%s%03d", *prefix, i),
			Email:        fmt.Sprintf("seed%03d@example.com", i),
			FavoriteGame: games[(i-1)%len(games)],
		}
		form.Set(values)

		receipt, err := form.Submit(ctx)
		var verr *logic.ValidationError
		switch {
		case errors.As(err, &verr):
			sugar.Warnw("Registration rejected", "gamerTag", values.GamerTag, "fields", verr.Fields)
			failed++
			continue
		case err != nil:
			sugar.Errorw("Registration failed", "gamerTag", values.GamerTag, "error", err)
			form.DismissError()
			failed++
			continue
		}

		<-completed
		sugar.Infow("Registered", "gamerTag", receipt.GamerTag, "count", receipt.Count, "id", receipt.ID)
	}

	after, err := api.Stats(ctx)
	if err != nil {
		sugar.Fatalw("Failed to read registration count", "error", err)
	}
	sugar.Infow("Seeding finished",
		"submitted", *count,
		"failed", failed,
		"countBefore", before.Count,
		"countAfter", after.Count,
		"spotsLeft", after.SpotsLeft,
	)

	if failed > 0 {
		os.Exit(1)
	}
}

// ordinal spells small numbers as letters so generated names pass the
// full-name rule (letters, spaces, hyphens and apostrophes only).
func ordinal(n int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{letters[n%26]}, out...)
		n /= 26
	}
	return string(out)
}
