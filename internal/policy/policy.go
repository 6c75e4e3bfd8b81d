// Package policy implements the multi-method authentication-list
// policy: validating configured lists, pruning disabled methods out
// of them at setup, deciding whether a candidate method may run right
// now, and advancing the lists once a method succeeds.
package policy

import (
	"strings"

	"github.com/sshauthd/sshauthd/internal/autherr"
	"github.com/sshauthd/sshauthd/internal/domain"
	"github.com/sshauthd/sshauthd/internal/registry"
)

// Split turns a comma-separated method-list token into its ordered
// names. Empty input is invalid: the list syntax is a non-empty,
// comma-separated sequence of tokens.
func Split(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, &autherr.ConfigurationError{Reason: "method list is empty"}
	}
	parts := strings.Split(list, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, &autherr.ConfigurationError{Reason: "method list contains an empty token"}
		}
		names = append(names, name)
	}
	return names, nil
}

// Validate checks a single list against the registry. requireEnabled
// additionally rejects a disabled method by name, the strict mode
// configuration loading uses. Setup does not call Validate; it splits
// each list and prunes disabled ones itself.
func Validate(reg *registry.Registry, list string, requireEnabled bool) error {
	names, err := Split(list)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == registry.NoneMethod {
			return &autherr.ConfigurationError{Reason: "\"none\" may not appear in a configured method list"}
		}
		m, ok := reg.Lookup(name)
		if !ok {
			return &autherr.ConfigurationError{Reason: "unknown method \"" + name + "\" in method list"}
		}
		if requireEnabled && !m.Enabled() {
			return &autherr.ConfigurationError{Reason: "disabled method \"" + name + "\" in method list"}
		}
	}
	return nil
}

// Setup builds the context's remaining-lists vector from the
// configured lists, dropping any list that names a disabled method.
// A configured count of zero leaves the vector empty (no multi-method
// policy in force) — that is not an error. A non-zero configured
// count that is pruned down to nothing is.
func Setup(reg *registry.Registry, ctx *domain.AuthContext, configured []string, onPrune func(list string)) error {
	if len(configured) == 0 {
		ctx.AuthMethodLists = nil
		return nil
	}

	kept := make([][]string, 0, len(configured))
	for _, list := range configured {
		names, err := Split(list)
		if err != nil {
			return err
		}

		disabled := false
		for _, name := range names {
			if name == registry.NoneMethod {
				return &autherr.ConfigurationError{Reason: "\"none\" may not appear in a configured method list"}
			}
			m, ok := reg.Lookup(name)
			if !ok || !m.Enabled() {
				disabled = true
				break
			}
		}

		if disabled {
			if onPrune != nil {
				onPrune(list)
			}
			continue
		}
		kept = append(kept, names)
	}

	if len(kept) == 0 {
		return &autherr.ConfigurationError{Reason: "no usable method lists remain after pruning disabled methods"}
	}

	ctx.AuthMethodLists = kept
	return nil
}

// MethodAllowed reports whether name may run right now: true
// unconditionally when no multi-method policy is in force, otherwise
// true iff some remaining list's first token equals name.
func MethodAllowed(ctx *domain.AuthContext, name string) bool {
	if len(ctx.AuthMethodLists) == 0 {
		return true
	}
	for _, list := range ctx.AuthMethodLists {
		if len(list) > 0 && list[0] == name {
			return true
		}
	}
	return false
}

// Advertise lists every enabled, non-"none" method the registry knows
// about that is presently allowed, in registry order, joined with
// commas directly — no intermediate C-string buffer trick.
func Advertise(reg *registry.Registry, ctx *domain.AuthContext) string {
	var names []string
	for _, m := range reg.EnabledAdvertisable() {
		if MethodAllowed(ctx, m.Name()) {
			names = append(names, m.Name())
		}
	}
	return strings.Join(names, ",")
}

// Update strips name from the head of every remaining list that
// starts with it. completed is true the moment any list becomes
// empty — full success. Calling Update with a name that heads no
// list is a caller bug: the controller must never dispatch a method
// method_allowed already said no to.
func Update(ctx *domain.AuthContext, name string) (completed bool, err error) {
	if len(ctx.AuthMethodLists) == 0 {
		// No multi-method policy in force; nothing to update, and the
		// single implicit "list" is already complete.
		return true, nil
	}

	matched := false
	remaining := ctx.AuthMethodLists[:0:0]
	for _, list := range ctx.AuthMethodLists {
		if len(list) == 0 || list[0] != name {
			remaining = append(remaining, list)
			continue
		}
		matched = true
		rest := list[1:]
		if len(rest) == 0 {
			return true, nil
		}
		remaining = append(remaining, rest)
	}

	if !matched {
		return false, &autherr.InternalError{Reason: "update called for method not present at the head of any list"}
	}

	ctx.AuthMethodLists = remaining
	return false, nil
}
