// Package travel provides the mock travel tools used by the demo agent.
// Values are simulated; weather conditions are deterministic per location.
package travel

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/coddhisatva/Tool-Calling-From-Scratch/pkg/tools"
)

// Tool names.
const (
	WeatherTool  = "get_weather"
	FlightsTool  = "get_flight_prices"
	CurrencyTool = "get_currency_exchange"
	DivideTool   = "divide_by_secret_number"
)

// ErrDivisionByZero is what the secret divisor always produces.
var ErrDivisionByZero = errors.New("division by zero")

var conditions = []string{"sunny", "rainy", "windy", "cloudy", "blizzard", "sandstorm", "plague"}

var tempRanges = map[string][2]int{
	"sunny":     {70, 85},
	"rainy":     {50, 65},
	"windy":     {55, 70},
	"cloudy":    {60, 75},
	"blizzard":  {10, 32},
	"sandstorm": {85, 110},
	"plague":    {65, 75},
}

// Service owns the random source behind the simulated lookups.
type Service struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a service drawing from rng. A nil rng is seeded from the clock.
func New(rng *rand.Rand) *Service {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Service{rng: rng}
}

// between returns a uniform integer in [lo, hi].
func (s *Service) between(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Service) uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

// Condition picks the weather for a location from its first letter.
func Condition(location string) string {
	first := 'a'
	if r, _ := utf8.DecodeRuneInString(location); location != "" && r != utf8.RuneError {
		first = unicode.ToLower(r)
	}
	return conditions[int(first)%len(conditions)]
}

// Weather reports simulated conditions for location.
func (s *Service) Weather(location string) string {
	cond := Condition(location)
	r := tempRanges[cond]
	return fmt.Sprintf("Weather in %s: %d°F, %s", location, s.between(r[0], r[1]), cond)
}

// FlightPrice reports a simulated fare between $300 and $2000.
func (s *Service) FlightPrice(origin, destination, date string) string {
	return fmt.Sprintf("Flights from %s to %s on %s: $%d", origin, destination, date, s.between(300, 2000))
}

// Exchange converts amount with a simulated rate between 0.30 and 2.85.
func (s *Service) Exchange(from, to string, amount float64) string {
	rate := s.uniform(0.30, 2.85)
	return fmt.Sprintf("%s %s = %.2f %s (rate: %.4f)",
		strconv.FormatFloat(amount, 'f', -1, 64), strings.ToUpper(from), amount*rate, strings.ToUpper(to), rate)
}

// Tools returns the three travel tools in their canonical order.
func (s *Service) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        WeatherTool,
			Description: "Get current weather conditions for any location",
			Parameters: []tools.Parameter{
				{Name: "location", Type: tools.TypeString, Required: true, Description: "The location to get weather for"},
			},
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				return s.Weather(tools.String(args, "location")), nil
			},
		},
		{
			Name:        FlightsTool,
			Description: "Get flight prices between two locations for a specific date",
			Parameters: []tools.Parameter{
				{Name: "origin", Type: tools.TypeString, Required: true, Description: "The departure location"},
				{Name: "destination", Type: tools.TypeString, Required: true, Description: "The arrival location"},
				{Name: "date", Type: tools.TypeString, Required: true, Description: "The flight date (e.g., 'June 15', 'next month')"},
			},
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				return s.FlightPrice(tools.String(args, "origin"), tools.String(args, "destination"), tools.String(args, "date")), nil
			},
		},
		{
			Name:        CurrencyTool,
			Description: "Convert an amount from one currency to another",
			Parameters: []tools.Parameter{
				{Name: "from_currency", Type: tools.TypeString, Required: true, Description: "The source currency code (e.g., 'USD', 'EUR')"},
				{Name: "to_currency", Type: tools.TypeString, Required: true, Description: "The target currency code (e.g., 'USD', 'EUR')"},
				{Name: "amount", Type: tools.TypeNumber, Required: true, Description: "The amount to convert"},
			},
			Handler: func(_ context.Context, args map[string]any) (any, error) {
				return s.Exchange(tools.String(args, "from_currency"), tools.String(args, "to_currency"), tools.Number(args, "amount")), nil
			},
		},
	}
}

// Divide is a tool that always fails, for exercising error recovery.
func Divide() tools.Tool {
	return tools.Tool{
		Name:        DivideTool,
		Description: "Divide a number by a secret number",
		Parameters: []tools.Parameter{
			{Name: "numerator", Type: tools.TypeInteger, Required: true, Description: "The number to divide"},
		},
		Handler: func(_ context.Context, _ map[string]any) (any, error) {
			return nil, ErrDivisionByZero
		},
	}
}

// Select returns the named tools in the order given. Empty names select
// the three travel tools. Unknown names are an error.
func (s *Service) Select(names []string) ([]tools.Tool, error) {
	all := append(s.Tools(), Divide())
	if len(names) == 0 {
		return all[:3], nil
	}

	byName := make(map[string]tools.Tool, len(all))
	for _, t := range all {
		byName[t.Name] = t
	}
	selected := make([]tools.Tool, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q", name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}
