// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package ledger_test

import (
	"context"
	"strings"
	"testing"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
	"codeberg.org/nodehub/nodehub/internal/services/duplicate"
	"codeberg.org/nodehub/nodehub/internal/services/ledger"
	"codeberg.org/nodehub/nodehub/internal/testutil"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*ledger.Service, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return ledger.NewService(repo, duplicate.New(repo)), repo
}

func rpcSubmission() ledger.NodeSubmission {
	return ledger.NodeSubmission{
		NodeType:     models.NodeTypeRPC,
		Name:         "Community RPC",
		Endpoint:     "https://rpc.example.com",
		ContactEmail: "operator@example.com",
		ContactName:  "Operator",
		Description:  "Archive node",
	}
}

func tokenSubmission() ledger.TokenSubmission {
	return ledger.TokenSubmission{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		WalletAddress:   "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		RequestedAmount: "2.5",
		Reason:          "Deploying test contracts",
	}
}

func TestCreateNodeRequest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateNodeRequest(ctx, rpcSubmission())

	require.NoError(t, err)
	assert.NotZero(t, req.ID)
	assert.True(t, strings.HasPrefix(req.TrackingID, "REQ-"))
	assert.True(t, ledger.ValidTrackingID(req.TrackingID))
	assert.Equal(t, models.StatusPending, req.Status)

	got, err := svc.NodeRequestByTrackingID(ctx, req.TrackingID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, "https://rpc.example.com", got.Endpoint)
}

func TestCreateNodeRequest_NormalizesInput(t *testing.T) {
	svc, _ := newTestService(t)
	sub := rpcSubmission()
	sub.NodeType = " RPC "
	sub.Endpoint = "  https://rpc.example.com \n"

	req, err := svc.CreateNodeRequest(context.Background(), sub)

	require.NoError(t, err)
	assert.Equal(t, models.NodeTypeRPC, req.NodeType)
	assert.Equal(t, "https://rpc.example.com", req.Endpoint)
}

func TestCreateNodeRequest_BootnodeAndBeacon(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	boot := rpcSubmission()
	boot.NodeType = models.NodeTypeBootnode
	boot.Endpoint = params.MainnetBootnodes[0]
	_, err := svc.CreateNodeRequest(ctx, boot)
	require.NoError(t, err)

	beacon := rpcSubmission()
	beacon.NodeType = models.NodeTypeBeacon
	beacon.Endpoint = params.V5Bootnodes[0]
	_, err = svc.CreateNodeRequest(ctx, beacon)
	require.NoError(t, err)
}

func TestCreateNodeRequest_Duplicate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateNodeRequest(ctx, rpcSubmission())
	require.NoError(t, err)

	_, err = svc.CreateNodeRequest(ctx, rpcSubmission())

	var dup *ledger.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, duplicate.SourceRequest, dup.Result.Source)
	assert.Equal(t, first.ID, dup.Result.ID)

	all, err := repo.ListNodeRequests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateNodeRequest_ResubmitAfterRejection(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateNodeRequest(ctx, rpcSubmission())
	require.NoError(t, err)
	require.NoError(t, repo.TransitionNodeRequest(ctx, first.ID, models.StatusPending, models.StatusRejected, "offline"))

	second, err := svc.CreateNodeRequest(ctx, rpcSubmission())

	require.NoError(t, err)
	assert.NotEqual(t, first.TrackingID, second.TrackingID)
}

func TestCreateNodeRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ledger.NodeSubmission)
		field  string
	}{
		{"unknown type", func(s *ledger.NodeSubmission) { s.NodeType = "validator" }, "node_type"},
		{"missing name", func(s *ledger.NodeSubmission) { s.Name = "  " }, "name"},
		{"missing endpoint", func(s *ledger.NodeSubmission) { s.Endpoint = "" }, "endpoint"},
		{"rpc without scheme", func(s *ledger.NodeSubmission) { s.Endpoint = "rpc.example.com" }, "endpoint"},
		{"rpc ftp scheme", func(s *ledger.NodeSubmission) { s.Endpoint = "ftp://rpc.example.com" }, "endpoint"},
		{"bootnode not enode", func(s *ledger.NodeSubmission) {
			s.NodeType = models.NodeTypeBootnode
			s.Endpoint = "https://boot.example.com"
		}, "endpoint"},
		{"beacon ftp url", func(s *ledger.NodeSubmission) {
			s.NodeType = models.NodeTypeBeacon
			s.Endpoint = "ftp://beacon.example.com"
		}, "endpoint"},
		{"bad email", func(s *ledger.NodeSubmission) { s.ContactEmail = "not-an-email" }, "contact_email"},
		{"long description", func(s *ledger.NodeSubmission) { s.Description = strings.Repeat("x", 2001) }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			sub := rpcSubmission()
			tt.modify(&sub)

			_, err := svc.CreateNodeRequest(context.Background(), sub)

			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateTokenRequest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateTokenRequest(ctx, tokenSubmission())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.TrackingID, "TKN-"))
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", req.WalletAddress)
	assert.Equal(t, "2.5", req.RequestedAmount)
	assert.Empty(t, req.TransferredAmount)

	got, err := svc.TokenRequest(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, req.TrackingID, got.TrackingID)
}

func TestCreateTokenRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ledger.TokenSubmission)
		field  string
	}{
		{"missing first name", func(s *ledger.TokenSubmission) { s.FirstName = "" }, "first_name"},
		{"bad email", func(s *ledger.TokenSubmission) { s.Email = "ada@" }, "email"},
		{"short wallet", func(s *ledger.TokenSubmission) { s.WalletAddress = "0x1234" }, "wallet_address"},
		{"wallet without prefix", func(s *ledger.TokenSubmission) {
			s.WalletAddress = "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
		}, "wallet_address"},
		{"non-hex wallet", func(s *ledger.TokenSubmission) {
			s.WalletAddress = "0xZZaeb6053f3e94c9b9a09f33669435e7ef1beaed"
		}, "wallet_address"},
		{"zero amount", func(s *ledger.TokenSubmission) { s.RequestedAmount = "0" }, "requested_amount"},
		{"negative amount", func(s *ledger.TokenSubmission) { s.RequestedAmount = "-1" }, "requested_amount"},
		{"fraction amount", func(s *ledger.TokenSubmission) { s.RequestedAmount = "1/2" }, "requested_amount"},
		{"exponent amount", func(s *ledger.TokenSubmission) { s.RequestedAmount = "1e3" }, "requested_amount"},
		{"text amount", func(s *ledger.TokenSubmission) { s.RequestedAmount = "lots" }, "requested_amount"},
		{"missing reason", func(s *ledger.TokenSubmission) { s.Reason = "" }, "reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			sub := tokenSubmission()
			tt.modify(&sub)

			_, err := svc.CreateTokenRequest(context.Background(), sub)

			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreateTokenRequest_MaxAmountSetting(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.SetSetting(ctx, ledger.SettingMaxTokenAmount, "2"))

	_, err := svc.CreateTokenRequest(ctx, tokenSubmission())
	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "requested_amount", verr.Field)

	sub := tokenSubmission()
	sub.RequestedAmount = "2.0"
	_, err = svc.CreateTokenRequest(ctx, sub)
	assert.NoError(t, err)
}

func TestParseAmount(t *testing.T) {
	r, err := ledger.ParseAmount(" 0.25 ")
	require.NoError(t, err)
	assert.Equal(t, "1/4", r.String())

	_, err = ledger.ParseAmount("")
	assert.Error(t, err)
}

func TestReads_MissingReturnNil(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	node, err := svc.NodeRequest(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, node)

	token, err := svc.TokenRequestByTrackingID(ctx, "TKN-00000000")
	require.NoError(t, err)
	assert.Nil(t, token)

	nodes, err := svc.NodeRequests(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	tokens, err := svc.TokenRequests(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	node, err := svc.CreateNodeRequest(ctx, rpcSubmission())
	require.NoError(t, err)
	token, err := svc.CreateTokenRequest(ctx, tokenSubmission())
	require.NoError(t, err)

	view, err := svc.Status(ctx, node.TrackingID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, ledger.KindNode, view.Kind)
	assert.Equal(t, models.StatusPending, view.Status)

	view, err = svc.Status(ctx, strings.ToLower(token.TrackingID))
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, ledger.KindToken, view.Kind)
	assert.Equal(t, token.TrackingID, view.TrackingID)

	for _, id := range []string{"REQ-00000000", "garbage", ""} {
		view, err = svc.Status(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, view, id)
	}
}

func TestCreateNodeRequest_MinimalSubmissions(t *testing.T) {
	tests := []struct {
		nodeType models.NodeType
		endpoint string
	}{
		{models.NodeTypeRPC, "https://rpc.test.io"},
		{models.NodeTypeBootnode, "enode://abc@1.2.3.4:30303"},
		{models.NodeTypeBeacon, "https://beacon.test.io"},
		{models.NodeTypeBeacon, "enr:-IS4QHCYrYZbAKW"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			svc, _ := newTestService(t)

			req, err := svc.CreateNodeRequest(context.Background(), ledger.NodeSubmission{
				NodeType: tt.nodeType,
				Name:     "Test Node",
				Endpoint: tt.endpoint,
			})

			require.NoError(t, err)
			assert.Regexp(t, `^REQ-[0-9A-F]{8}$`, req.TrackingID)
			assert.Equal(t, models.StatusPending, req.Status)
			assert.Empty(t, req.ContactEmail)
		})
	}
}

func TestValidateListing(t *testing.T) {
	tests := []struct {
		name     string
		nodeType models.NodeType
		title    string
		endpoint string
		field    string
	}{
		{"rpc ok", models.NodeTypeRPC, "Official", "wss://rpc.example.com/ws", ""},
		{"bootnode ok", models.NodeTypeBootnode, "Boot", params.MainnetBootnodes[0], ""},
		{"beacon ok", models.NodeTypeBeacon, "Beacon", params.V5Bootnodes[0], ""},
		{"missing name", models.NodeTypeRPC, "", "https://rpc.example.com", "name"},
		{"missing endpoint", models.NodeTypeRPC, "Official", "", "endpoint"},
		{"rpc without scheme", models.NodeTypeRPC, "Official", "rpc.example.com", "endpoint"},
		{"enode for beacon", models.NodeTypeBeacon, "Beacon", params.MainnetBootnodes[0], "endpoint"},
		{"bootnode bad key", models.NodeTypeBootnode, "Boot", "enode://abc@1.2.3.4:30303", "endpoint"},
		{"beacon url", models.NodeTypeBeacon, "Beacon", "https://beacon.test.io", "endpoint"},
		{"beacon bad enr", models.NodeTypeBeacon, "Beacon", "enr:-not-a-record", "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.ValidateListing(tt.nodeType, tt.title, tt.endpoint)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
