package messaging

import (
	"context"
	"errors"
	"testing"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func bookingParticipants() []ParticipantInput {
	return []ParticipantInput{
		{UserID: "c1", Role: "customer", Name: "Cara"},
		{UserID: "p1", Role: "provider", Name: "Pat"},
	}
}

func TestCreateConversationAddsParticipants(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())

	res, err := bridge.CreateConversation(context.Background(), CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
	require.NoError(t, err)
	assert.Regexp(t, `^booking-b1-\d+$`, res.FriendlyName)
	require.Len(t, res.Participants, 2)
	assert.Equal(t, "customer-c1", res.Participants[0].Identity)
	assert.Equal(t, "provider-p1", res.Participants[1].Identity)

	conv := vendor.conversations[res.ConversationSid]
	assert.Equal(t, "b1", conv.Attributes.BookingID)
	assert.Equal(t, "booking", conv.Attributes.Type)
}

func TestAddExistingParticipantIsNoOp(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())
	ctx := context.Background()

	created, err := bridge.CreateConversation(ctx, CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
	require.NoError(t, err)

	out, err := bridge.Dispatch(ctx, AddParticipant{
		ConversationSid: created.ConversationSid,
		Participant:     ParticipantInput{UserID: "c1", Role: "customer"},
	})
	require.NoError(t, err)
	res := out.(*ParticipantResult)
	assert.True(t, res.AlreadyPresent)
	assert.Len(t, vendor.participants[created.ConversationSid], 2)
}

func TestCreateConversationSurfacesOtherParticipantFailures(t *testing.T) {
	vendor := newMemoryVendor()
	vendor.failAdd["provider-p1"] = &utils.VendorError{Vendor: "messaging", Code: 50200, Status: 400, Message: "invalid identity"}
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())

	_, err := bridge.CreateConversation(context.Background(), CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
	var vendorErr *utils.VendorError
	require.True(t, errors.As(err, &vendorErr))
	assert.Equal(t, 50200, vendorErr.Code)
	assert.Equal(t, 400, utils.StatusFor(err))

	// The customer add that succeeded is not rolled back.
	for _, ps := range vendor.participants {
		assert.Len(t, ps, 1)
	}
}

func TestSendThenGetMessages(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())
	ctx := context.Background()

	created, err := bridge.CreateConversation(ctx, CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
	require.NoError(t, err)

	sent, err := bridge.Dispatch(ctx, SendMessage{
		ConversationSid:     created.ConversationSid,
		Message:             "On my way",
		ParticipantIdentity: "provider-p1",
		UserRole:            "provider",
		UserName:            "Pat",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sent.(*SendResult).MessageSid)

	out, err := bridge.Dispatch(ctx, GetMessages{ConversationSid: created.ConversationSid})
	require.NoError(t, err)
	msgs := out.([]models.Message)
	require.Len(t, msgs, 1)
	assert.Equal(t, "provider-p1", msgs[0].Author)
	assert.Equal(t, "On my way", msgs[0].Body)
	assert.Equal(t, "provider", msgs[0].Attributes["userRole"])
}

func TestFindOrCreateReusesBookingConversation(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())
	ctx := context.Background()
	cmd := FindOrCreateBookingConversation{
		Identity: "customer-c1",
		Create:   CreateConversation{BookingID: "b1", Participants: bookingParticipants()},
	}

	first, err := bridge.Dispatch(ctx, cmd)
	require.NoError(t, err)
	second, err := bridge.Dispatch(ctx, cmd)
	require.NoError(t, err)

	assert.True(t, first.(*FindOrCreateResult).Created)
	assert.False(t, second.(*FindOrCreateResult).Created)
	assert.Equal(t, first.(*FindOrCreateResult).ConversationSid, second.(*FindOrCreateResult).ConversationSid)
	assert.Len(t, vendor.conversations, 1)
}

func TestDirectoryHitSkipsVendor(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())
	dir := NewDirectory([]models.Conversation{{Sid: "CH1", Attributes: models.ConversationAttributes{BookingID: "b7"}}})

	res, err := bridge.FindOrCreate(context.Background(), dir, CreateConversation{BookingID: "b7", Participants: bookingParticipants()})
	require.NoError(t, err)
	assert.Equal(t, "CH1", res.ConversationSid)
	assert.Zero(t, vendor.callCount())
}

func TestGetConversationsIncludesLastMessageAndHorizon(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())
	ctx := context.Background()

	created, err := bridge.CreateConversation(ctx, CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
	require.NoError(t, err)
	for _, body := range []string{"hi", "hello", "see you"} {
		_, err := bridge.SendMessage(ctx, SendMessage{ConversationSid: created.ConversationSid, Message: body, ParticipantIdentity: "provider-p1"})
		require.NoError(t, err)
	}

	convs, err := bridge.GetConversations(ctx, "customer-c1")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.NotNil(t, convs[0].LastMessage)
	assert.Equal(t, "see you", convs[0].LastMessage.Body)
	require.NotNil(t, convs[0].UnreadMessagesCount)
	assert.Equal(t, 3, *convs[0].UnreadMessagesCount)

	_, err = bridge.MarkAsRead(ctx, MarkAsRead{ConversationSid: created.ConversationSid, ParticipantIdentity: "customer-c1"})
	require.NoError(t, err)

	convs, err = bridge.GetConversations(ctx, "customer-c1")
	require.NoError(t, err)
	require.NotNil(t, convs[0].LastReadMessageIndex)
	assert.Equal(t, 2, *convs[0].LastReadMessageIndex)
	assert.Equal(t, 0, *convs[0].UnreadMessagesCount)
}

func TestMarkAsReadModes(t *testing.T) {
	for _, tc := range []struct {
		mode      MarkReadMode
		wantIndex bool
	}{
		{MarkReadLatestIndex, true},
		{MarkReadAll, false},
	} {
		vendor := newMemoryVendor()
		bridge := NewBridge(vendor, tc.mode, zap.NewNop())
		ctx := context.Background()

		created, err := bridge.CreateConversation(ctx, CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
		require.NoError(t, err)
		_, err = bridge.SendMessage(ctx, SendMessage{ConversationSid: created.ConversationSid, Message: "hi", ParticipantIdentity: "provider-p1"})
		require.NoError(t, err)

		res, err := bridge.MarkAsRead(ctx, MarkAsRead{ConversationSid: created.ConversationSid, ParticipantIdentity: "customer-c1"})
		require.NoError(t, err)
		horizon := vendor.horizons[res.ParticipantSid]
		assert.False(t, horizon.Timestamp.IsZero())
		assert.Equal(t, tc.wantIndex, horizon.Index != nil, string(tc.mode))
	}
}

func TestValidationFailsBeforeVendor(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())

	for _, cmd := range []Command{
		CreateConversation{Participants: bookingParticipants()},
		CreateConversation{BookingID: "b1"},
		SendMessage{ConversationSid: "CH1", ParticipantIdentity: "customer-c1"},
		GetMessages{},
		RemoveParticipant{ConversationSid: "CH1"},
		MarkAsRead{ConversationSid: "CH1"},
	} {
		_, err := bridge.Dispatch(context.Background(), cmd)
		assert.Equal(t, 400, utils.StatusFor(err), cmd.Action())
	}
	assert.Zero(t, vendor.callCount())
}

func TestRemoveParticipant(t *testing.T) {
	vendor := newMemoryVendor()
	bridge := NewBridge(vendor, MarkReadLatestIndex, zap.NewNop())
	ctx := context.Background()

	created, err := bridge.CreateConversation(ctx, CreateConversation{BookingID: "b1", Participants: bookingParticipants()})
	require.NoError(t, err)

	_, err = bridge.Dispatch(ctx, RemoveParticipant{ConversationSid: created.ConversationSid, ParticipantSid: created.Participants[0].Sid})
	require.NoError(t, err)

	out, err := bridge.Dispatch(ctx, GetParticipants{ConversationSid: created.ConversationSid})
	require.NoError(t, err)
	participants := out.([]models.ConversationParticipant)
	require.Len(t, participants, 1)
	assert.Equal(t, "provider-p1", participants[0].Identity)
}

func TestUnconfiguredVendorIsConfigError(t *testing.T) {
	bridge := NewBridge(nil, MarkReadLatestIndex, zap.NewNop())

	_, err := bridge.Dispatch(context.Background(), GetParticipants{ConversationSid: "CH1"})
	var ce *utils.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 500, utils.StatusFor(err))
}
