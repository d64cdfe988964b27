package accounts

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cleared-dev/ledgr/internal/config"
	"github.com/cleared-dev/ledgr/internal/model"
)

var (
	ErrUnknownAccount = errors.New("unknown account")
	ErrDuplicate      = errors.New("duplicate account id")
	ErrUnknownKind    = errors.New("unknown account kind")
)

// Service provides in-memory lookup over the configured accounts.
type Service struct {
	accounts []Account
	byID     map[string]Account
}

// NewService creates a Service from a slice of accounts. Duplicate ids are rejected.
func NewService(accounts []Account) (*Service, error) {
	byID := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		if _, ok := byID[a.ID()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, a.ID())
		}
		byID[a.ID()] = a
	}
	return &Service{accounts: slices.Clone(accounts), byID: byID}, nil
}

// FromConfig builds accounts from their ledgr.yaml definitions.
func FromConfig(defs []config.AccountConfig) (*Service, error) {
	accts := make([]Account, 0, len(defs))
	for _, d := range defs {
		a, err := New(d)
		if err != nil {
			return nil, err
		}
		accts = append(accts, a)
	}
	return NewService(accts)
}

// New builds a single account from its definition.
func New(d config.AccountConfig) (Account, error) {
	if strings.TrimSpace(d.ID) == "" {
		return nil, fmt.Errorf("account %q: empty id", d.Name)
	}
	basic := Basic{AccountID: d.ID, DisplayName: d.Name, FieldDescs: d.Fields, Required: d.Required}
	switch d.Kind {
	case "", KindNoop:
		return Noop{AccountID: d.ID, DisplayName: d.Name}, nil
	case KindBasic:
		return basic, nil
	case KindNoInvoice:
		return NoInvoice{basic}, nil
	default:
		return nil, fmt.Errorf("account %s: %w %q", d.ID, ErrUnknownKind, d.Kind)
	}
}

// Definitions converts accounts back to ledgr.yaml definitions.
func Definitions(accts []Account) []config.AccountConfig {
	defs := make([]config.AccountConfig, 0, len(accts))
	for _, a := range accts {
		d := config.AccountConfig{ID: a.ID(), Name: a.Name()}
		switch v := a.(type) {
		case Noop:
			d.Kind = KindNoop
		case Basic:
			d.Kind, d.Fields, d.Required = KindBasic, v.Fields(), slices.Clone(v.Required)
		case NoInvoice:
			d.Kind, d.Fields, d.Required = KindNoInvoice, v.Fields(), slices.Clone(v.Required)
		default:
			d.Kind = KindNoop
		}
		defs = append(defs, d)
	}
	return defs
}

// All returns all accounts.
func (s *Service) All() []Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Verify checks an entry against its account. Unknown accounts are an error
// of their own; account rule violations come back as *VerificationError.
func (s *Service) Verify(e *model.Entry) error {
	a, ok := s.byID[e.AccountID()]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAccount, e.AccountID())
	}
	return a.Verify(e)
}
