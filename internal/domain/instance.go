package domain

import (
	"fmt"
	"time"
)

type Instance struct {
	ID                    int64                 `json:"id"`
	Name                  string                `json:"name"`
	Domain                string                `json:"domain"`
	AdminUserID           int64                 `json:"admin_user_id"`
	ModerationRules       ModerationRules       `json:"moderation_rules"`
	RequiredProfileFields RequiredProfileFields `json:"required_profile_fields"`
	FederationRules       FederationRules       `json:"federation_rules"`
	CreatedAt             time.Time             `json:"created_at"`
}

// Instance configuration blocks are stored as jsonb but only ever written
// through these versioned structs, validated before they reach the database.

type ModerationRules struct {
	Version         int      `json:"version"`
	BlockedWords    []string `json:"blocked_words,omitempty"`
	RequireApproval bool     `json:"require_approval"`
}

func (r ModerationRules) Validate() error {
	if r.Version < 1 {
		return fmt.Errorf("moderation rules: version must be >= 1, got %d", r.Version)
	}
	for _, w := range r.BlockedWords {
		if w == "" {
			return fmt.Errorf("moderation rules: blocked words must not be empty")
		}
	}
	return nil
}

type RequiredProfileFields struct {
	Version int      `json:"version"`
	Fields  []string `json:"fields,omitempty"`
}

var profileFieldNames = map[string]bool{
	"name":     true,
	"bio":      true,
	"headline": true,
	"image":    true,
}

func (r RequiredProfileFields) Validate() error {
	if r.Version < 1 {
		return fmt.Errorf("required profile fields: version must be >= 1, got %d", r.Version)
	}
	for _, f := range r.Fields {
		if !profileFieldNames[f] {
			return fmt.Errorf("required profile fields: unknown field %q", f)
		}
	}
	return nil
}

type FederationRules struct {
	Version        int      `json:"version"`
	AutoAccept     bool     `json:"auto_accept"`
	BlockedDomains []string `json:"blocked_domains,omitempty"`
}

func (r FederationRules) Validate() error {
	if r.Version < 1 {
		return fmt.Errorf("federation rules: version must be >= 1, got %d", r.Version)
	}
	for _, d := range r.BlockedDomains {
		if d == "" {
			return fmt.Errorf("federation rules: blocked domains must not be empty")
		}
	}
	return nil
}

// Federation edge statuses. Edges are directed: (instance, peer) and
// (peer, instance) are distinct rows.
const (
	FederationPending  = "pending"
	FederationActive   = "active"
	FederationBlocked  = "blocked"
	FederationRejected = "rejected"
)

type FederatedInstance struct {
	ID                int64     `json:"id"`
	InstanceID        int64     `json:"instance_id"`
	FedWithInstanceID int64     `json:"fed_with_instance_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	// Joined field
	PeerDomain string `json:"peer_domain,omitempty"`
}
