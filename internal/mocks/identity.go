package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/postit-wall/internal/model"
)

// UserStore is a mock implementation of model.UserStore.
type UserStore struct {
	mock.Mock
}

func NewUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserStore {
	m := &UserStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetBySubject(ctx context.Context, provider, subject string) (model.User, error) {
	args := m.Called(ctx, provider, subject)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Link(ctx context.Context, id uuid.UUID, provider, subject string) (model.User, error) {
	args := m.Called(ctx, id, provider, subject)
	return args.Get(0).(model.User), args.Error(1)
}

// SessionStore is a mock implementation of model.SessionStore.
type SessionStore struct {
	mock.Mock
}

func NewSessionStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionStore {
	m := &SessionStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SessionStore) Create(ctx context.Context, record model.SessionRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *SessionStore) GetByJTI(ctx context.Context, jti string) (model.SessionRecord, error) {
	args := m.Called(ctx, jti)
	return args.Get(0).(model.SessionRecord), args.Error(1)
}

func (m *SessionStore) RevokeByJTI(ctx context.Context, jti string) error {
	return m.Called(ctx, jti).Error(0)
}

// LinkStore is a mock implementation of model.LinkStore.
type LinkStore struct {
	mock.Mock
}

func NewLinkStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *LinkStore {
	m := &LinkStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *LinkStore) Create(ctx context.Context, link model.PendingLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *LinkStore) GetByState(ctx context.Context, state string) (model.PendingLink, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(model.PendingLink), args.Error(1)
}

func (m *LinkStore) Consume(ctx context.Context, state string) error {
	return m.Called(ctx, state).Error(0)
}

// TokenManager is a mock implementation of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func NewTokenManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenManager {
	m := &TokenManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TokenManager) GenerateSessionToken(userID uuid.UUID) (string, string, time.Time, error) {
	args := m.Called(userID)
	return args.String(0), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *TokenManager) ParseSessionToken(token string) (uuid.UUID, string, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

// FederatedProvider is a mock implementation of model.FederatedProvider.
type FederatedProvider struct {
	mock.Mock
}

func NewFederatedProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *FederatedProvider {
	m := &FederatedProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *FederatedProvider) Name() string {
	return m.Called().String(0)
}

func (m *FederatedProvider) AuthURL(state string) string {
	ret := m.Called(state)
	if rf, ok := ret.Get(0).(func(string) string); ok {
		return rf(state)
	}
	return ret.String(0)
}

func (m *FederatedProvider) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}
