package logic

import (
	"fmt"
	"time"

	"github.com/mettlestate/tournament-site/internal/models"
)

var (
	navItems = []models.NavItem{
		{Label: "Event Details", Target: "event-details"},
		{Label: "Leaderboard", Target: "leaderboard"},
		{Label: "Rules", Target: "rules"},
		{Label: "Registrations", Target: "registrations"},
		{Label: "FAQs", Target: "faq"},
	}

	eventDetails = []models.EventDetail{
		{Icon: "calendar", Label: "Date & Time", Value: "August 10, 2025 at 6PM SAST"},
		{Icon: "map-pin", Label: "Location", Value: "Online - Streamed live on Twitch"},
		{Icon: "dollar-sign", Label: "Prize Pool", Value: "R50,000"},
		{Icon: "target", Label: "Format", Value: "Round Robin, Double Elimination"},
	}

	rules = []models.Rule{
		{Icon: "users", Title: "Eligibility", Description: "Open to all players aged 16 and above. Players must register with a valid email and gamer tag."},
		{Icon: "shield", Title: "Fair Play", Description: "Any form of cheating, hacking, or exploiting will result in immediate disqualification and ban from future tournaments."},
		{Icon: "clock", Title: "Punctuality", Description: "Players must be online 15 minutes before their scheduled match. Late arrivals may result in automatic forfeit."},
		{Icon: "trophy", Title: "Tournament Format", Description: "Round Robin group stage followed by Double Elimination bracket. All matches are Best of 3, finals are Best of 5."},
	}

	faqs = []models.FAQItem{
		{
			Question: "How do I register for the tournament?",
			Answer:   `Click the "Register Now" button at the top of the page and fill out the registration form with your details. Registration closes 24 hours before the event starts.`,
		},
		{
			Question: "What are the minimum requirements to participate?",
			Answer:   "You need a stable internet connection, a gaming PC or console that meets your game's requirements, and a Discord account for communication during the tournament.",
		},
		{
			Question: "How is the prize pool distributed?",
			Answer:   "The R50,000 prize pool is distributed as follows: 1st place receives R25,000, 2nd place receives R15,000, and 3rd place receives R10,000.",
		},
		{
			Question: "Can I participate if I'm not from South Africa?",
			Answer:   "Yes! This is an online tournament open to players worldwide. However, prize distribution may be affected by international transfer fees.",
		},
	}

	registrationSteps = []models.RegistrationStep{
		{Icon: "users", Title: "Create Account", Description: "Fill out the registration form with your details and gamer tag."},
		{Icon: "check-circle", Title: "Confirm Email", Description: "Check your email for confirmation link and activate your account."},
		{Icon: "calendar", Title: "Check Schedule", Description: "View your match schedule and join the Discord server for updates."},
	}

	// Demo rows; nothing is recorded from real submissions.
	recentPlayers = []models.RegisteredPlayer{
		{ID: 1, GamerTag: "ShadowStrike", Name: "Alex Johnson", FavoriteGame: "Valorant", RegisteredDate: "Aug 1, 2025", Status: models.StatusConfirmed},
		{ID: 2, GamerTag: "PhoenixRising", Name: "Sarah Chen", FavoriteGame: "Apex Legends", RegisteredDate: "Aug 2, 2025", Status: models.StatusConfirmed},
		{ID: 3, GamerTag: "ThunderBolt_99", Name: "Marcus Williams", FavoriteGame: "Fortnite", RegisteredDate: "Aug 2, 2025", Status: models.StatusConfirmed},
		{ID: 4, GamerTag: "IceQueen", Name: "Emma Davis", FavoriteGame: "PUBG", RegisteredDate: "Aug 3, 2025", Status: models.StatusPending},
		{ID: 5, GamerTag: "NightHawk", Name: "James Anderson", FavoriteGame: "Call of Duty", RegisteredDate: "Aug 3, 2025", Status: models.StatusConfirmed},
		{ID: 6, GamerTag: "DragonSlayer", Name: "Lisa Martinez", FavoriteGame: "Valorant", RegisteredDate: "Aug 4, 2025", Status: models.StatusConfirmed},
		{ID: 7, GamerTag: "VortexGaming", Name: "Ryan Thompson", FavoriteGame: "Apex Legends", RegisteredDate: "Aug 4, 2025", Status: models.StatusConfirmed},
		{ID: 8, GamerTag: "BlazeFury", Name: "Jessica Lee", FavoriteGame: "Overwatch", RegisteredDate: "Aug 5, 2025", Status: models.StatusPending},
		{ID: 9, GamerTag: "SilentAssassin", Name: "David Kim", FavoriteGame: "Counter-Strike", RegisteredDate: "Aug 5, 2025", Status: models.StatusConfirmed},
		{ID: 10, GamerTag: "CyberPunk_X", Name: "Michael Brown", FavoriteGame: "Valorant", RegisteredDate: "Aug 6, 2025", Status: models.StatusConfirmed},
		{ID: 11, GamerTag: "QuantumLeap", Name: "Amanda White", FavoriteGame: "Fortnite", RegisteredDate: "Aug 6, 2025", Status: models.StatusConfirmed},
		{ID: 12, GamerTag: "StormBreaker", Name: "Chris Garcia", FavoriteGame: "Apex Legends", RegisteredDate: "Aug 7, 2025", Status: models.StatusPending},
	}
)

type contentService struct {
	counter          Counter
	maxRegistrations int64
	eventStart       time.Time
}

func NewContentService(counter Counter, maxRegistrations int64, eventStart time.Time) ContentService {
	return &contentService{
		counter:          counter,
		maxRegistrations: maxRegistrations,
		eventStart:       eventStart,
	}
}

// Content returns copies of every static section. The registration info
// block reads the live count.
func (s *contentService) Content() models.SiteContent {
	return models.SiteContent{
		Title:             "Legends of Victory: Battle Royale Cup",
		Tagline:           "Compete for glory. Only one can win.",
		Nav:               append([]models.NavItem(nil), navItems...),
		EventDetails:      append([]models.EventDetail(nil), eventDetails...),
		Rules:             append([]models.Rule(nil), rules...),
		FAQ:               append([]models.FAQItem(nil), faqs...),
		RegistrationSteps: append([]models.RegistrationStep(nil), registrationSteps...),
		RegistrationInfo: []models.InfoItem{
			{Label: "Registration Opens", Value: "July 1, 2025"},
			{Label: "Registration Closes", Value: "August 9, 2025 at 11:59 PM SAST"},
			{Label: "Maximum Participants", Value: fmt.Sprintf("%d Players", s.maxRegistrations)},
			{Label: "Current Registrations", Value: fmt.Sprintf("%d / %d", s.counter.Read(), s.maxRegistrations)},
		},
		RecentPlayers: append([]models.RegisteredPlayer(nil), recentPlayers...),
	}
}

// Countdown splits the time left until the event into days, hours, minutes
// and seconds. Everything is zero once the event has started.
func (s *contentService) Countdown(now time.Time) models.Countdown {
	left := s.eventStart.Sub(now)
	if left <= 0 {
		return models.Countdown{Finished: true}
	}
	total := int(left / time.Second)
	return models.Countdown{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}
