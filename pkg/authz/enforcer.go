// Package authz decides which roles may run destructive catalog operations,
// using a Casbin policy that ships embedded and can be overridden from disk.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/ammar0144/catalog4go/pkg/logging"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions known to the embedded policy
const (
	ObjectTitle  = "title"
	ObjectActor  = "actor"
	ActionDelete = "delete"
	ActionSweep  = "sweep"
)

// Config holds enforcer configuration
type Config struct {
	// ModelPath is the Casbin model file. Empty uses the embedded model.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// PolicyPath is the Casbin policy CSV. Empty uses the embedded policy.
	PolicyPath string `json:"policy_path" yaml:"policy_path"`
}

// Enforcer wraps a Casbin enforcer
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates an enforcer from the configured or embedded model and policy
func NewEnforcer(config Config) (*Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if config.ModelPath != "" {
		m, err = model.NewModelFromFile(config.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" {
		if _, statErr := os.Stat(config.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy adds the "p" lines of a policy CSV to the enforcer
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[0] != "p" || len(parts) < 4 {
			continue
		}
		if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
			return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// Allowed reports whether role may delete titles. Enforcement errors deny.
func (e *Enforcer) Allowed(role string) bool {
	return e.allow(role, ObjectTitle, ActionDelete)
}

// SweepAllowed reports whether role may sweep orphaned actors. Enforcement errors deny.
func (e *Enforcer) SweepAllowed(role string) bool {
	return e.allow(role, ObjectActor, ActionSweep)
}

func (e *Enforcer) allow(role, object, action string) bool {
	allowed, err := e.Enforce(role, object, action)
	if err != nil {
		logger := logging.WithComponent("authz")
		logger.Error().Err(err).Str("role", role).Str("object", object).Str("action", action).Msg("policy check failed")
		return false
	}
	return allowed
}
