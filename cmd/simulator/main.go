package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/models"
)

var (
	services = []string{"Oil Change & Filter", "Brake Inspection & Repair", "Engine Diagnostic", "Tire Rotation", "Wheel Alignment"}
	makes    = map[string][]string{
		"Toyota":    {"Camry", "Corolla", "RAV4"},
		"Honda":     {"Civic", "Accord", "CR-V"},
		"Ford":      {"F-150", "Focus", "Escape"},
		"Chevrolet": {"Silverado", "Malibu"},
		"BMW":       {"X5", "3 Series"},
	}
	makeNames = []string{"Toyota", "Honda", "Ford", "Chevrolet", "BMW"}
)

// job is one simulated appointment moving through the shop.
type job struct {
	Code   string
	Status models.Status
}

// apiClient talks to the admin API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s failed with status: %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *apiClient) login(ctx context.Context, username, password string) error {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Username: username, Password: password}, http.StatusOK, &resp)
	if err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *apiClient) register(ctx context.Context, reg models.TrackingRegistration) (string, error) {
	var resp struct {
		Code string `json:"code"`
	}
	if err := c.do(ctx, http.MethodPost, "/tracking", reg, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	if resp.Code == "" {
		return "", fmt.Errorf("invalid tracking code in response")
	}
	return resp.Code, nil
}

func (c *apiClient) updateStatus(ctx context.Context, code string, status models.Status, eta *time.Time) error {
	body := map[string]any{"status": status}
	if eta != nil {
		body["estimatedCompletion"] = eta
	}
	return c.do(ctx, http.MethodPut, "/tracking/"+code+"/status", body, http.StatusOK, nil)
}

func randomRegistration(rng *rand.Rand, n int) models.TrackingRegistration {
	mk := makeNames[rng.IntN(len(makeNames))]
	model := makes[mk][rng.IntN(len(makes[mk]))]
	vehicle := models.VehicleInfo{Make: mk, Model: model, Year: 2015 + rng.IntN(10)}
	return models.TrackingRegistration{
		AppointmentID: fmt.Sprintf("sim-%d", n),
		CustomerID:    fmt.Sprintf("customer-%d@example.com", rng.IntN(50)+1),
		ServiceType:   services[rng.IntN(len(services))],
		VehicleInfo:   vehicle.String(),
		Status:        models.StatusScheduled,
	}
}

// nextStatus follows the first allowed transition; completed has none.
func nextStatus(s models.Status) (models.Status, bool) {
	next := models.AllowedTransitions(s)
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// advance moves one random unfinished job a step. It reports false when every job is done.
func advance(ctx context.Context, c *apiClient, jobs []*job, rng *rand.Rand) bool {
	open := make([]*job, 0, len(jobs))
	for _, j := range jobs {
		if !models.IsTerminal(j.Status) {
			open = append(open, j)
		}
	}
	if len(open) == 0 {
		return false
	}

	j := open[rng.IntN(len(open))]
	next, _ := nextStatus(j.Status)
	var eta *time.Time
	if next == models.StatusInProgress {
		t := time.Now().Add(time.Duration(30+rng.IntN(150)) * time.Minute)
		eta = &t
	}
	if err := c.updateStatus(ctx, j.Code, next, eta); err != nil {
		log.WithError(err).WithField("code", j.Code).Error("Failed to update status")
		return true
	}
	log.WithFields(log.Fields{"code": j.Code, "from": j.Status, "to": next}).Info("Advanced service")
	j.Status = next
	return true
}

func simulate(ctx context.Context, c *apiClient, jobs []*job, interval time.Duration, rng *rand.Rand) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if !advance(ctx, c, jobs, rng) {
				log.Info("All simulated services completed")
				return
			}
		}
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	count := envInt("SIM_COUNT", 10)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2)) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newAPIClient(apiURL, os.Getenv("SIM_AUTH_TOKEN"))
	if client.token == "" && os.Getenv("SIM_USERNAME") != "" {
		if err := client.login(ctx, os.Getenv("SIM_USERNAME"), os.Getenv("SIM_PASSWORD")); err != nil {
			log.WithError(err).Fatal("Failed to log in")
		}
	}

	log.WithFields(log.Fields{
		"count":    count,
		"api_url":  apiURL,
		"interval": interval,
	}).Info("Starting service simulation")

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 7))
	jobs := make([]*job, 0, count)
	for i := 0; i < count; i++ {
		reg := randomRegistration(rng, i+1)
		code, err := client.register(ctx, reg)
		if err != nil {
			log.WithError(err).Error("Failed to register tracking code")
			continue
		}
		log.WithFields(log.Fields{"code": code, "service": reg.ServiceType, "vehicle": reg.VehicleInfo}).Info("Registered service")
		jobs = append(jobs, &job{Code: code, Status: models.StatusScheduled})
	}

	simulate(ctx, client, jobs, interval, rng)
}
