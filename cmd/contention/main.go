// Command contention fires concurrent bookings for one event at a running
// eventbook server and checks that committed seats add up afterwards.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

type options struct {
	BaseURL  string
	EventID  string
	Users    int
	Quantity int
	Password string
}

type attempt struct {
	User   int
	Status int
	Error  string
}

type report struct {
	Attempts       []attempt
	Confirmed      int
	Rejected       int
	Failed         int
	SeatsBefore    int
	SeatsAfter     int
	TrulyAvailable int
}

// Consistent reports whether the committed counter moved by exactly the
// seats of the confirmed bookings.
func (r *report) Consistent(quantity int) bool {
	return r.SeatsBefore-r.SeatsAfter == r.Confirmed*quantity && r.SeatsAfter >= 0
}

func main() {
	var opts options
	pflag.StringVar(&opts.BaseURL, "base-url", "http://localhost:8080/api/v1", "API base URL")
	pflag.StringVar(&opts.EventID, "event", "", "event id to book (required)")
	pflag.IntVarP(&opts.Users, "users", "n", 20, "number of concurrent users")
	pflag.IntVarP(&opts.Quantity, "quantity", "q", 2, "seats per booking")
	pflag.StringVar(&opts.Password, "password", "contention-pass", "password for the generated users")
	pflag.Parse()

	if opts.EventID == "" {
		fmt.Fprintln(os.Stderr, "--event is required")
		pflag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("🧪 %d users booking %d seat(s) each on event %s\n", opts.Users, opts.Quantity, opts.EventID)
	rep, err := run(ctx, &http.Client{Timeout: 30 * time.Second}, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	for _, a := range rep.Attempts {
		if a.Error != "" {
			fmt.Printf("   user %02d: %d %s\n", a.User, a.Status, a.Error)
		}
	}
	fmt.Printf("\n✅ confirmed: %d  ⛔ rejected: %d  ❗ failed: %d\n", rep.Confirmed, rep.Rejected, rep.Failed)
	fmt.Printf("   available seats: %d -> %d (truly available now: %d)\n", rep.SeatsBefore, rep.SeatsAfter, rep.TrulyAvailable)

	if !rep.Consistent(opts.Quantity) {
		fmt.Println("❌ seat counters do not match the confirmed bookings")
		os.Exit(1)
	}
	fmt.Println("🎉 seat counters match the confirmed bookings")
}

func run(ctx context.Context, client *http.Client, opts options) (*report, error) {
	c := &apiClient{http: client, base: strings.TrimRight(opts.BaseURL, "/")}

	before, _, err := c.seats(ctx, opts.EventID)
	if err != nil {
		return nil, err
	}

	// Tokens are issued up front so the bookings start together.
	runID := uuid.NewString()[:8]
	tokens := make([]string, opts.Users)
	for i := range tokens {
		email := fmt.Sprintf("contention-%s-%d@eventbook.local", runID, i)
		if tokens[i], err = c.register(ctx, email, opts.Password); err != nil {
			return nil, fmt.Errorf("register user %d: %w", i, err)
		}
	}

	rep := &report{SeatsBefore: before, Attempts: make([]attempt, opts.Users)}
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			<-start
			rep.Attempts[i] = c.book(ctx, i, token, opts.EventID, opts.Quantity)
		}(i, token)
	}
	close(start)
	wg.Wait()

	for _, a := range rep.Attempts {
		switch a.Status {
		case http.StatusCreated:
			rep.Confirmed++
		case http.StatusBadRequest:
			rep.Rejected++
		default:
			rep.Failed++
		}
	}

	if rep.SeatsAfter, rep.TrulyAvailable, err = c.seats(ctx, opts.EventID); err != nil {
		return nil, err
	}
	return rep, nil
}

type apiClient struct {
	http *http.Client
	base string
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *apiClient) do(ctx context.Context, method, path, token string, body interface{}) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

func (c *apiClient) seats(ctx context.Context, eventID string) (available, truly int, err error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/events/"+eventID, "", nil)
	if err != nil {
		return 0, 0, fmt.Errorf("get event: %w", err)
	}
	if status != http.StatusOK {
		return 0, 0, fmt.Errorf("get event: status %d: %s", status, raw)
	}
	var env envelope
	var event struct {
		AvailableSeats int `json:"available_seats"`
		TrulyAvailable int `json:"truly_available"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, 0, err
	}
	if err := json.Unmarshal(env.Data, &event); err != nil {
		return 0, 0, err
	}
	return event.AvailableSeats, event.TrulyAvailable, nil
}

func (c *apiClient) register(ctx context.Context, email, password string) (string, error) {
	status, raw, err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Contention Tester", "email": email, "password": password,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("status %d: %s", status, raw)
	}
	var env envelope
	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		return "", err
	}
	return auth.AccessToken, nil
}

func (c *apiClient) book(ctx context.Context, user int, token, eventID string, quantity int) attempt {
	status, raw, err := c.do(ctx, http.MethodPost, "/bookings", token, map[string]interface{}{
		"event_id": eventID,
		"name":     "Contention Tester",
		"email":    fmt.Sprintf("user%d@eventbook.local", user),
		"mobile":   "5550100",
		"quantity": quantity,
	})
	if err != nil {
		return attempt{User: user, Error: err.Error()}
	}
	a := attempt{User: user, Status: status}
	if status != http.StatusCreated {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		a.Error = env.Message
	}
	return a
}
