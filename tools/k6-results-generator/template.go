package main

import (
	"log"
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
)

var (
	streetAddresses = []string{"123 Main St", "456 Oak Ave", "789 Pine Rd", "321 Elm St", "654 Maple Dr"}
	passengerCities = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}
	passengerStates = []string{"NY", "CA", "IL", "TX", "AZ"}
	zipCodes        = []string{"10001", "90001", "60601", "77001", "85001"}
	testCardNumbers = []string{"4111111111111111", "5555555555554444", "4000000000000002"}

	fromPorts = []string{"Paris", "Philadelphia", "Boston", "Portland", "San Diego", "Mexico City", "São Paolo"}
	toPorts   = []string{"Buenos Aires", "Rome", "London", "Berlin", "New York", "Dublin", "Cairo"}
)

// passengerTemplate holds the confirmation form fields submitted at the end of
// a booking journey.
type passengerTemplate struct {
	FirstName        string `faker:"first_name"`
	LastName         string `faker:"last_name"`
	CardFirstName    string `faker:"first_name"`
	CardLastName     string `faker:"last_name"`
	CardType         string `faker:"-"`
	CreditCardMonth  string `faker:"oneof:01,02,03,04,05,06,07,08,09,10,11,12"`
	CreditCardYear   string `faker:"oneof:2025,2026,2027,2028,2029"`
	Address          string `faker:"-"`
	City             string `faker:"-"`
	State            string `faker:"-"`
	ZipCode          string `faker:"-"`
	CreditCardNumber string `faker:"-"`
}

// formValues returns the fields as posted to confirmation.php.
func (p passengerTemplate) formValues() map[string]string {
	return map[string]string{
		"inputName":        joinNonEmpty(p.FirstName, p.LastName),
		"address":          p.Address,
		"city":             p.City,
		"state":            p.State,
		"zipCode":          p.ZipCode,
		"cardType":         p.CardType,
		"creditCardNumber": p.CreditCardNumber,
		"creditCardMonth":  p.CreditCardMonth,
		"creditCardYear":   p.CreditCardYear,
		"nameOnCard":       joinNonEmpty(p.CardFirstName, p.CardLastName),
	}
}

func newPassengerTemplate(rng *rand.Rand) passengerTemplate {
	var template passengerTemplate
	if err := faker.FakeData(&template); err != nil {
		log.Fatalf("faker failed to populate passenger template: %v", err)
	}
	template.CardType = "visa"
	template.Address = pick(rng, streetAddresses)
	template.City = pick(rng, passengerCities)
	template.State = pick(rng, passengerStates)
	template.ZipCode = pick(rng, zipCodes)
	template.CreditCardNumber = pick(rng, testCardNumbers)
	return template
}

type cityPair struct {
	FromPort string
	ToPort   string
}

func randomCities(rng *rand.Rand) cityPair {
	return cityPair{
		FromPort: pick(rng, fromPorts),
		ToPort:   pick(rng, toPorts),
	}
}

// pick returns a uniformly chosen element, or the zero value for an empty list.
func pick[T any](rng *rand.Rand, options []T) T {
	var zero T
	if len(options) == 0 {
		return zero
	}
	return options[rng.Intn(len(options))]
}

func randomMillis(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
