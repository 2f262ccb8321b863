package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/homecontrol-core/internal/node"
)

// SetRepository attaches a registration store. Without one, provisioned
// nodes live until the process exits.
func (r *Runtime) SetRepository(repo Repository) {
	r.mu.Lock()
	r.repo = repo
	r.mu.Unlock()
}

func (r *Runtime) repository() Repository {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo
}

// RestoreNodes adds every persisted registration of the device.
//
// A registration that no longer builds or clashes with a configured node is
// logged and skipped. Call it before Start so the first description already
// lists the restored nodes.
//
// Returns:
//   - int: Number of nodes added
//   - error: If the registrations cannot be listed
func (r *Runtime) RestoreNodes(ctx context.Context) (int, error) {
	repo := r.repository()
	if repo == nil {
		return 0, nil
	}

	regs, err := repo.List(ctx, r.dev.ID())
	if err != nil {
		return 0, fmt.Errorf("listing registrations: %w", err)
	}

	restored := 0
	for _, reg := range regs {
		n, err := reg.Build()
		if err != nil {
			r.logger.Warn("skipping registration", "node", reg.NodeID, "kind", reg.Kind, "error", err)
			continue
		}
		if err := r.dev.AddNode(n); err != nil {
			r.logger.Warn("skipping registration", "node", reg.NodeID, "kind", reg.Kind, "error", err)
			continue
		}
		restored++
	}

	if restored > 0 {
		if err := r.Reconfigure(ctx); err != nil {
			return restored, err
		}
	}
	r.logger.Info("registrations restored", "device", r.dev.ID(), "count", restored)
	return restored, nil
}

// Provision builds a node from a registration, persists it and adds it to
// the running device.
//
// Parameters:
//   - ctx: Context for the store and the re-advertisement
//   - reg: Registration; DeviceID defaults to the runtime's device
//
// Returns:
//   - node.Node: The added node
//   - error: ErrInvalidRegistration, ErrForeignNode, ErrNodeExists, or a
//     build or store error
func (r *Runtime) Provision(ctx context.Context, reg *Registration) (node.Node, error) {
	if reg.DeviceID == "" {
		reg.DeviceID = r.dev.ID()
	}
	if reg.DeviceID != r.dev.ID() {
		return nil, fmt.Errorf("%w: %s provisioned on %s", ErrForeignNode, reg.Identity(), r.dev.ID())
	}

	n, err := reg.Build()
	if err != nil {
		return nil, err
	}
	if _, exists := r.dev.Node(reg.NodeID); exists {
		return nil, fmt.Errorf("%w: %s", ErrNodeExists, reg.Identity())
	}

	repo := r.repository()
	if repo != nil {
		if err := repo.Create(ctx, reg); err != nil {
			return nil, err
		}
	}

	if err := r.dev.AddNode(n); err != nil {
		if repo != nil {
			if delErr := repo.Delete(ctx, reg.DeviceID, reg.NodeID); delErr != nil {
				r.logger.Error("rolling back registration", "node", reg.NodeID, "error", delErr)
			}
		}
		return nil, err
	}

	r.logger.Info("node provisioned", "node", reg.NodeID, "kind", reg.Kind)
	if err := r.Reconfigure(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Deprovision removes a node from the device and deletes its registration.
// Configured nodes without a registration are removed until the next start.
func (r *Runtime) Deprovision(ctx context.Context, nodeID string) error {
	if err := r.dev.RemoveNode(nodeID); err != nil {
		return err
	}

	if repo := r.repository(); repo != nil {
		err := repo.Delete(ctx, r.dev.ID(), nodeID)
		if err != nil && !errors.Is(err, ErrRegistrationNotFound) {
			return fmt.Errorf("deleting registration: %w", err)
		}
	}

	r.logger.Info("node deprovisioned", "node", nodeID)
	return r.Reconfigure(ctx)
}
