package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// JWT secret from environment variable or fallback
func getJWTSecret() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("your_secret_key_please_change_in_production")
}

var jwtSecret = getJWTSecret()

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		jwtSecret = getJWTSecret()
	}

	initDB()

	mux := http.NewServeMux()

	// Core auth & account endpoints
	mux.Handle("/register", registerHandler(db))
	mux.Handle("/login", loginHandler(db))
	mux.Handle("/me", meHandler(db))
	mux.Handle("/me/profile", meProfileHandler(db))

	// Ping: mark this user as active "now"
	mux.Handle("/me/ping", mePingHandler(db)) // POST

	// Match discovery & ranking
	mux.Handle("/matches", matchesHandler(db))            // GET ?limit=&offset=
	mux.Handle("/matches/count", matchCountHandler(db))   // GET
	mux.Handle("/matches/mutual", mutualMatchesHandler(db)) // GET

	// Swipes
	mux.Handle("/likes/", likeProfileHandler(db))          // POST /likes/{profileID}
	mux.Handle("/likes/received", likesReceivedHandler(db)) // GET

	// Public profile views
	mux.Handle("/users/", userProfileHandler(db)) // GET /users/{profileID}

	// WebSocket presence endpoint
	mux.Handle("/ws/presence", wsPresenceHandler(db))

	// Health check endpoint for Docker
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Batch loaders ride on every request; handlers that don't use them
	// pay only the context value.
	handler := DataLoaderMiddleware(db)(withCORS(mux))

	logrus.Infof("Starting Amora backend on port %s...", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}
