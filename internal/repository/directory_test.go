// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRPCEndpoint_DefaultsToOfficial(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	e := &models.RPCEndpoint{Name: "Main", Endpoint: "https://rpc.example.com", IsActive: true}
	require.NoError(t, repo.CreateRPCEndpoint(ctx, e))

	assert.NotZero(t, e.ID)
	assert.Equal(t, models.RPCTypeOfficial, e.Type)

	found, err := repo.FindRPCEndpointByURL(ctx, "https://rpc.example.com")
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)
}

func TestCreateRPCEndpoint_Duplicate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateRPCEndpoint(ctx, &models.RPCEndpoint{Name: "a", Endpoint: "https://rpc.example.com"}))
	err := repo.CreateRPCEndpoint(ctx, &models.RPCEndpoint{Name: "b", Endpoint: "https://rpc.example.com"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestListRPCEndpoints_ActiveOnly(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateRPCEndpoint(ctx, &models.RPCEndpoint{Name: "b", Endpoint: "https://b.example.com", IsActive: true}))
	require.NoError(t, repo.CreateRPCEndpoint(ctx, &models.RPCEndpoint{Name: "a", Endpoint: "https://a.example.com", IsActive: false}))

	all, err := repo.ListRPCEndpoints(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)

	active, err := repo.ListRPCEndpoints(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].Name)
}

func TestUpdateAndDeleteRPCEndpoint(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	e := &models.RPCEndpoint{Name: "a", Endpoint: "https://a.example.com"}
	require.NoError(t, repo.CreateRPCEndpoint(ctx, e))

	e.Name = "renamed"
	e.IsActive = true
	require.NoError(t, repo.UpdateRPCEndpoint(ctx, e))

	got, err := repo.GetRPCEndpoint(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.IsActive)

	require.NoError(t, repo.DeleteRPCEndpoint(ctx, e.ID))
	assert.ErrorIs(t, repo.DeleteRPCEndpoint(ctx, e.ID), repository.ErrNotFound)
}

func TestBootNodes(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	enode := "enode://abc@10.0.0.1:30303"

	n := &models.BootNode{Name: "boot-1", Enode: enode, IsActive: true}
	require.NoError(t, repo.CreateBootNode(ctx, n))

	found, err := repo.FindBootNodeByEnode(ctx, enode)
	require.NoError(t, err)
	assert.Equal(t, n.ID, found.ID)

	assert.ErrorIs(t, repo.CreateBootNode(ctx, &models.BootNode{Name: "dup", Enode: enode}), repository.ErrDuplicate)

	n.IsActive = false
	require.NoError(t, repo.UpdateBootNode(ctx, n))

	active, err := repo.ListBootNodes(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, repo.DeleteBootNode(ctx, n.ID))
	_, err = repo.GetBootNode(ctx, n.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindBeaconNode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	withEndpoint := &models.BeaconNode{Name: "b1", ENR: "enr:-AAA", Endpoint: "https://beacon.example.com"}
	bare := &models.BeaconNode{Name: "b2", ENR: "enr:-BBB"}
	require.NoError(t, repo.CreateBeaconNode(ctx, withEndpoint))
	require.NoError(t, repo.CreateBeaconNode(ctx, bare))

	byENR, err := repo.FindBeaconNode(ctx, "enr:-BBB")
	require.NoError(t, err)
	assert.Equal(t, bare.ID, byENR.ID)

	byEndpoint, err := repo.FindBeaconNode(ctx, "https://beacon.example.com")
	require.NoError(t, err)
	assert.Equal(t, withEndpoint.ID, byEndpoint.ID)

	_, err = repo.FindBeaconNode(ctx, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateAndDeleteBeaconNode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	n := &models.BeaconNode{Name: "b1", ENR: "enr:-AAA"}
	require.NoError(t, repo.CreateBeaconNode(ctx, n))

	n.Endpoint = "https://beacon.example.com"
	require.NoError(t, repo.UpdateBeaconNode(ctx, n))

	got, err := repo.GetBeaconNode(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://beacon.example.com", got.Endpoint)

	list, err := repo.ListBeaconNodes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeleteBeaconNode(ctx, n.ID))
	assert.ErrorIs(t, repo.DeleteBeaconNode(ctx, n.ID), repository.ErrNotFound)
}
