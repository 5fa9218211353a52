package junos

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// Executor is the part of the RPC envelope the lifecycle engine needs.
// *Client implements it.
type Executor interface {
	Get(ctx context.Context, filter string) (string, error)
	Load(ctx context.Context, config string) error
}

// Exists reports whether the object identified by fields["name"] is present
// in the candidate configuration.
func Exists(ctx context.Context, exec Executor, kind *Kind, fields Fields) (bool, error) {
	fields = kind.fields(fields)
	filter, err := render(kind.get, fields, false)
	if err != nil {
		return false, err
	}
	resp, err := exec.Get(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to query %s %s: %w", kind.Name, fields.Text("name"), err)
	}
	return containsName(resp, fields.Text("name")), nil
}

// InUse reports whether any dependent object mentions the object. Kinds
// without a usage query are never in use.
func InUse(ctx context.Context, exec Executor, kind *Kind, fields Fields) (bool, error) {
	if kind.usage == nil {
		return false, nil
	}
	fields = kind.fields(fields)
	filter, err := render(kind.usage, fields, false)
	if err != nil {
		return false, err
	}
	resp, err := exec.Get(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to query references to %s %s: %w", kind.Name, fields.Text("name"), err)
	}
	if kind.referenced != nil {
		return kind.referenced(resp, fields), nil
	}
	return mentions(resp, fields.Text(kind.usageToken)), nil
}

// List returns the names of every object of a listable kind, in appliance
// order, keeping only names the kind recognizes.
func List(ctx context.Context, exec Executor, kind *Kind, fields Fields) ([]string, error) {
	if kind.list == nil {
		return nil, fmt.Errorf("%s cannot be listed", kind.Name)
	}
	filter, err := render(kind.list, kind.fields(fields), false)
	if err != nil {
		return nil, err
	}
	resp, err := exec.Get(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Name, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, name := range elementTexts(resp, "name") {
		if seen[name] || (kind.match != nil && !kind.match(name)) {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// EnsureOperation adds an object unless it already exists.
//
//	err := (&junos.EnsureOperation{
//	    Kind:   junos.ProxyARP,
//	    Fields: junos.Fields{"interface": "ge-0/0/0.0", "name": "203.0.113.10/32"},
//	}).Execute(ctx, client)
type EnsureOperation struct {
	Kind   *Kind
	Fields Fields
}

// Execute runs the operation. Adding an existing object is a no-op.
func (op *EnsureOperation) Execute(ctx context.Context, exec Executor) error {
	log := logr.FromContextOrDiscard(ctx)
	name := op.Fields.Text("name")

	exists, err := Exists(ctx, exec, op.Kind, op.Fields)
	if err != nil {
		return err
	}
	if exists {
		log.V(1).Info("already present", "kind", op.Kind.Name, "name", name)
		return nil
	}

	tmpl := op.Kind.add
	if tmpl == nil {
		tmpl = op.Kind.get
	}
	config, err := render(tmpl, op.Kind.fields(op.Fields), false)
	if err != nil {
		return err
	}
	if err := exec.Load(ctx, config); err != nil {
		return fmt.Errorf("failed to add %s %s: %w", op.Kind.Name, name, err)
	}
	log.V(1).Info("added", "kind", op.Kind.Name, "name", name)
	return nil
}

// DeleteOperation removes an object unless it is absent or still referenced.
type DeleteOperation struct {
	Kind   *Kind
	Fields Fields
}

// Execute runs the operation. Absent and in-use objects are left alone and
// reported as success.
func (op *DeleteOperation) Execute(ctx context.Context, exec Executor) error {
	log := logr.FromContextOrDiscard(ctx)
	name := op.Fields.Text("name")

	exists, err := Exists(ctx, exec, op.Kind, op.Fields)
	if err != nil {
		return err
	}
	if !exists {
		log.V(1).Info("already absent", "kind", op.Kind.Name, "name", name)
		return nil
	}

	inUse, err := InUse(ctx, exec, op.Kind, op.Fields)
	if err != nil {
		return err
	}
	if inUse {
		log.V(1).Info("still referenced, keeping", "kind", op.Kind.Name, "name", name)
		return nil
	}

	config, err := render(op.Kind.get, op.Kind.fields(op.Fields), true)
	if err != nil {
		return err
	}
	if err := exec.Load(ctx, config); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", op.Kind.Name, name, err)
	}
	log.V(1).Info("deleted", "kind", op.Kind.Name, "name", name)
	return nil
}

// PolicyMatch is the match clause of a security policy as the appliance
// holds it.
type PolicyMatch struct {
	Sources      []string
	Destinations []string
	Applications []string
}

// ReadPolicy returns the match clause of the security policy identified by
// fields (fromZone, toZone, name), or nil when the policy does not exist.
func ReadPolicy(ctx context.Context, exec Executor, fields Fields) (*PolicyMatch, error) {
	fields = SecurityPolicy.fields(fields)
	filter, err := render(SecurityPolicy.get, fields, false)
	if err != nil {
		return nil, err
	}
	resp, err := exec.Get(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s %s: %w", SecurityPolicy.Name, fields.Text("name"), err)
	}
	if !containsName(resp, fields.Text("name")) {
		return nil, nil
	}
	return &PolicyMatch{
		Sources:      elementTexts(resp, "source-address"),
		Destinations: elementTexts(resp, "destination-address"),
		Applications: elementTexts(resp, "application"),
	}, nil
}
