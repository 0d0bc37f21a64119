package main

import (
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
)

const (
	defaultFlight = "43"
	defaultPrice  = "472.56"
)

var (
	flightFieldPattern = regexp.MustCompile(`name="flight"\s+value="([^"]+)"`)
	priceFieldPattern  = regexp.MustCompile(`name="price"\s+value="([^"]+)"`)
)

type flightInfo struct {
	Flight string
	Price  string
}

// extractFlightInfo pulls the first flight number and price out of a reserve
// page, falling back to a known BlazeDemo flight when a field is absent.
func extractFlightInfo(body string) flightInfo {
	info := flightInfo{Flight: defaultFlight, Price: defaultPrice}
	if m := flightFieldPattern.FindStringSubmatch(body); m != nil {
		info.Flight = m[1]
	}
	if m := priceFieldPattern.FindStringSubmatch(body); m != nil {
		info.Price = m[1]
	}
	return info
}

func buildReserveURL(baseURL string, cities cityPair) string {
	q := url.Values{}
	q.Set("fromPort", cities.FromPort)
	q.Set("toPort", cities.ToPort)
	return strings.TrimSuffix(baseURL, "/") + "/reserve.php?" + q.Encode()
}

// renderReservePage produces a reserve.php-like body. Roughly one page in
// twenty omits the form fields so the scraper fallback is exercised.
func renderReservePage(rng *rand.Rand, cities cityPair) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Flights from %s to %s: </h3>\n<table>\n", cities.FromPort, cities.ToPort)
	if rng.Intn(20) == 0 {
		b.WriteString("</table>\n")
		return b.String()
	}

	for range 1 + rng.Intn(5) {
		flight := 1 + rng.Intn(999)
		price := randomMillis(rng, 200, 800)
		b.WriteString("<tr><td><form action=\"purchase.php\" method=\"post\">")
		fmt.Fprintf(&b, "<input type=\"submit\" value=\"Choose This Flight\"><input type=\"hidden\" name=\"flight\" value=\"%d\">", flight)
		fmt.Fprintf(&b, "<input type=\"hidden\" name=\"price\" value=\"%.2f\">", price)
		b.WriteString("</form></td></tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String()
}
