package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danevairena/Bookstore/dto"
)

func unreadCount(t *testing.T, s *testServer, token string) []dto.NotificationDTO {
	t.Helper()
	resp := s.performRequest(t, http.MethodGet, "/notifications", nil, withBearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var notifications []dto.NotificationDTO
	decode(t, resp, &notifications)
	return notifications
}

func TestMessagesUpdateUnreadCount(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signUp(t, "alice")
	_, bobToken := s.signUp(t, "bob")

	for _, body := range []string{"is Dune still for sale?", "hello?"} {
		resp := s.performRequest(t, http.MethodPost, "/send_message/bob", map[string]string{"body": body}, withBearer(aliceToken))
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	}

	notifications := unreadCount(t, s, bobToken)
	require.Len(t, notifications, 1)
	assert.Equal(t, "unread_message_count", notifications[0].Name)
	assert.JSONEq(t, "2", string(notifications[0].Data))

	// Nothing newer than the latest notification
	resp := s.performRequest(t, http.MethodGet,
		fmt.Sprintf("/notifications?since=%f", notifications[0].Timestamp+1), nil, withBearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var none []dto.NotificationDTO
	decode(t, resp, &none)
	assert.Empty(t, none)

	resp = s.performRequest(t, http.MethodGet, "/messages", nil, withBearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var inbox dto.PageDTO[dto.MessageDTO]
	decode(t, resp, &inbox)
	require.Len(t, inbox.Items, 2)
	assert.Equal(t, "hello?", inbox.Items[0].Body)
	assert.Equal(t, "alice", inbox.Items[0].Sender)

	notifications = unreadCount(t, s, bobToken)
	require.Len(t, notifications, 1)
	assert.JSONEq(t, "0", string(notifications[0].Data))

	resp = s.performRequest(t, http.MethodPost, "/send_message/bob", map[string]string{"body": "still there?"}, withBearer(aliceToken))
	require.Equal(t, http.StatusCreated, resp.Code)
	notifications = unreadCount(t, s, bobToken)
	require.Len(t, notifications, 1)
	assert.JSONEq(t, "1", string(notifications[0].Data))

	// The sender's inbox is untouched
	resp = s.performRequest(t, http.MethodGet, "/messages", nil, withBearer(aliceToken))
	decode(t, resp, &inbox)
	assert.Empty(t, inbox.Items)
}

func TestSendMessageErrors(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp(t, "alice")
	s.signUp(t, "bob")

	resp := s.performRequest(t, http.MethodPost, "/send_message/ghost", map[string]string{"body": "hi"}, withBearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = s.performRequest(t, http.MethodPost, "/send_message/bob", map[string]string{"body": ""}, withBearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = s.performRequest(t, http.MethodPost, "/send_message/bob", map[string]string{"body": "hi"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = s.performRequest(t, http.MethodGet, "/notifications?since=abc", nil, withBearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
