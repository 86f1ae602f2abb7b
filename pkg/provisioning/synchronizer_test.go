package provisioning_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/provisioner/pkg/gateway"
	"github.com/dmitrymomot/provisioner/pkg/logger"
	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

func TestSynchronizer_Apply(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory(sub(1, provisioning.StatusPending, true))
	s := provisioning.NewSynchronizer(gw)

	require.NoError(t, s.Apply(context.Background(), 1, provisioning.StatusDeployed))
	assert.False(t, s.DryRun())
	assert.Equal(t, []gateway.Write{{ID: 1, Status: provisioning.StatusDeployed}}, gw.Writes())
}

func TestSynchronizer_DryRun(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatJSON))

	gw := gateway.NewMemory(sub(1, provisioning.StatusPending, true))
	s := provisioning.NewSynchronizer(gw, provisioning.WithDryRun(true), provisioning.WithSynchronizerLogger(log))

	require.NoError(t, s.Apply(context.Background(), 1, provisioning.StatusDeployed))
	assert.True(t, s.DryRun())
	assert.Empty(t, gw.Writes())
	assert.Contains(t, buf.String(), "dry-run")
	assert.Contains(t, buf.String(), `"deployment_status":"DEPLOYED"`)
}

func TestSynchronizer_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory(sub(1, provisioning.StatusPending, true))
	s := provisioning.NewSynchronizer(gw)

	err := s.Apply(context.Background(), 1, provisioning.DeploymentStatus("ARCHIVED"))
	assert.ErrorIs(t, err, provisioning.ErrTransitionRejected)
	assert.Empty(t, gw.Writes())
}

func TestSynchronizer_WriteNotRetried(t *testing.T) {
	t.Parallel()
	gw := gateway.NewMemory(sub(1, provisioning.StatusPending, true))
	gw.FailWrites(provisioning.ErrUpstreamUnavailable)
	s := provisioning.NewSynchronizer(gw)

	err := s.Apply(context.Background(), 1, provisioning.StatusDeployed)
	assert.ErrorIs(t, err, provisioning.ErrUpstreamUnavailable)
	assert.Empty(t, gw.Writes())
}
