package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoutingConfig carries the organization specific routing tables.
type RoutingConfig struct {
	// MEPLocations maps a lowercased ticket location to a maintenance mailbox.
	MEPLocations      map[string]string
	MEPDefaultMailbox string
	TransportMailbox  string
	HODEmails         []string
}

const (
	defaultPEPPLMailbox     = "mep.peppl@premierenergies.com"
	defaultMEPMailbox       = "mep.peipl@premierenergies.com"
	defaultTransportMailbox = "krishnaiah.donta@premierenergies.com"
)

var defaultPEPPLLocations = []string{
	"PEPPL",
	"PEIPL-C",
	"Bhagwati-WH",
	"Axonify-WH",
	"Bahadurguda-WH",
	"Kothur-WH",
}

var defaultHODEmails = []string{
	"aarnav.singh@premierenergies.com",
	"pulkit@premierenergies.com",
	"karthikeyan.m@premierenergies.com",
	"vishnu.hazari@premierenergies.com",
	"taranjeet.a@premierenergies.com",
}

// routingFile is the YAML shape of ROUTING_FILE.
//
//	mep:
//	  default_mailbox: mep.peipl@example.com
//	  mailboxes:
//	    mep.peppl@example.com: [PEPPL, PEIPL-C]
//	transport_mailbox: transport@example.com
//	hod_emails: [head@example.com]
type routingFile struct {
	MEP struct {
		DefaultMailbox string              `yaml:"default_mailbox"`
		Mailboxes      map[string][]string `yaml:"mailboxes"`
	} `yaml:"mep"`
	TransportMailbox string   `yaml:"transport_mailbox"`
	HODEmails        []string `yaml:"hod_emails"`
}

// MEPMailbox resolves the assignee for an MEP location. Unknown locations use the default mailbox.
func (r RoutingConfig) MEPMailbox(location string) string {
	if mailbox, ok := r.MEPLocations[normalizeLocation(location)]; ok {
		return mailbox
	}
	return r.MEPDefaultMailbox
}

// IsHOD reports whether email is on the HOD allow-list.
func (r RoutingConfig) IsHOD(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, hod := range r.HODEmails {
		if hod == email {
			return true
		}
	}
	return false
}

// Validate checks that every route ends in a mailbox.
func (r RoutingConfig) Validate() error {
	if r.MEPDefaultMailbox == "" {
		return fmt.Errorf("routing: MEP default mailbox is required")
	}
	if r.TransportMailbox == "" {
		return fmt.Errorf("routing: transport mailbox is required")
	}
	for loc, mailbox := range r.MEPLocations {
		if mailbox == "" {
			return fmt.Errorf("routing: location %q has no mailbox", loc)
		}
	}
	return nil
}

func loadRouting() (RoutingConfig, error) {
	if path := os.Getenv("ROUTING_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return RoutingConfig{}, fmt.Errorf("read routing file: %w", err)
		}
		return ParseRoutingYAML(data)
	}

	locations := map[string]string{}
	for _, loc := range defaultPEPPLLocations {
		locations[normalizeLocation(loc)] = defaultPEPPLMailbox
	}
	if pairs := getEnvAsList("ROUTING_MEP_LOCATIONS", nil); pairs != nil {
		parsed, err := parseLocationPairs(pairs)
		if err != nil {
			return RoutingConfig{}, err
		}
		locations = parsed
	}

	r := RoutingConfig{
		MEPLocations:      locations,
		MEPDefaultMailbox: normalizeEmail(getEnv("ROUTING_MEP_DEFAULT_MAILBOX", defaultMEPMailbox)),
		TransportMailbox:  normalizeEmail(getEnv("ROUTING_TRANSPORT_MAILBOX", defaultTransportMailbox)),
		HODEmails:         normalizeEmails(getEnvAsList("ROUTING_HOD_EMAILS", defaultHODEmails)),
	}
	return r, r.Validate()
}

// ParseRoutingYAML builds a RoutingConfig from the ROUTING_FILE format.
func ParseRoutingYAML(data []byte) (RoutingConfig, error) {
	var f routingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RoutingConfig{}, fmt.Errorf("parse routing file: %w", err)
	}
	locations := map[string]string{}
	for mailbox, locs := range f.MEP.Mailboxes {
		for _, loc := range locs {
			key := normalizeLocation(loc)
			if prev, dup := locations[key]; dup && prev != normalizeEmail(mailbox) {
				return RoutingConfig{}, fmt.Errorf("routing: location %q mapped to %s and %s", loc, prev, mailbox)
			}
			locations[key] = normalizeEmail(mailbox)
		}
	}
	r := RoutingConfig{
		MEPLocations:      locations,
		MEPDefaultMailbox: normalizeEmail(f.MEP.DefaultMailbox),
		TransportMailbox:  normalizeEmail(f.TransportMailbox),
		HODEmails:         normalizeEmails(f.HODEmails),
	}
	return r, r.Validate()
}

func parseLocationPairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		loc, mailbox, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(loc) == "" || strings.TrimSpace(mailbox) == "" {
			return nil, fmt.Errorf("invalid ROUTING_MEP_LOCATIONS entry %q", pair)
		}
		out[normalizeLocation(loc)] = normalizeEmail(mailbox)
	}
	return out, nil
}

func normalizeLocation(loc string) string {
	return strings.ToLower(strings.TrimSpace(loc))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = normalizeEmail(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
