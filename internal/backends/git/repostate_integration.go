package git

import (
	"context"

	"docdelta/internal/repostate"
)

// RepoState fingerprints the working tree at dir. Live snapshots carry it
// so a report can say whether uncommitted changes were compared.
func (g *Adapter) RepoState(ctx context.Context, dir string) (*repostate.RepoState, error) {
	g.logger.Debug("Computing repository state", "dir", dir)

	state, err := repostate.ComputeRepoState(ctx, g.binary, dir)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Repository state computed",
		"repoStateId", state.RepoStateID,
		"headCommit", state.HeadCommit,
		"dirty", state.Dirty,
	)
	return state, nil
}
