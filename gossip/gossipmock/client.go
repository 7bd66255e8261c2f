// Hand-written in the shape MockGen produces.
// Source: github.com/luxfi/consensus-core/gossip (interfaces: Client)

// Package gossipmock is a hand-written gomock mock for the gossip.Client
// interface.
package gossipmock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"
)

// Client is a mock of the gossip.Client interface.
type Client struct {
	ctrl     *gomock.Controller
	recorder *ClientMockRecorder
}

// ClientMockRecorder is the mock recorder for Client.
type ClientMockRecorder struct {
	mock *Client
}

// NewClient returns a new mock Client.
func NewClient(ctrl *gomock.Controller) *Client {
	mock := &Client{ctrl: ctrl}
	mock.recorder = &ClientMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *Client) EXPECT() *ClientMockRecorder {
	return m.recorder
}

// AppRequestAny mocks base method.
func (m *Client) AppRequestAny(ctx context.Context, request []byte, onResponse func([]byte, error)) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AppRequestAny", ctx, request, onResponse)
	ret0, _ := ret[0].(error)
	return ret0
}

// AppRequestAny indicates an expected call of AppRequestAny.
func (mr *ClientMockRecorder) AppRequestAny(ctx, request, onResponse interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppRequestAny", reflect.TypeOf((*Client)(nil).AppRequestAny), ctx, request, onResponse)
}

// AppGossip mocks base method.
func (m *Client) AppGossip(ctx context.Context, request []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AppGossip", ctx, request)
	ret0, _ := ret[0].(error)
	return ret0
}

// AppGossip indicates an expected call of AppGossip.
func (mr *ClientMockRecorder) AppGossip(ctx, request interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppGossip", reflect.TypeOf((*Client)(nil).AppGossip), ctx, request)
}
