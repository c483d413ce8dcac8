// Hand-written in the shape MockGen emits for the interfaces in
// internal/cache/cache.go, internal/embed/embed.go, internal/provider/provider.go.

// Package mocks holds go.uber.org/mock doubles for the interfaces
// internal/fanout and internal/server tests need: cache.Store,
// embed.Client, and provider.Adapter. Checked in rather than generated
// at build time, matching how a mockgen output is normally committed.
package mocks

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	"github.com/howard-nolan/questionrouter/internal/cache"
	"github.com/howard-nolan/questionrouter/internal/embed"
	"github.com/howard-nolan/questionrouter/internal/model"
	"github.com/howard-nolan/questionrouter/internal/provider"
)

// MockStore is a mock of the cache.Store interface.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

type MockStoreMockRecorder struct {
	mock *MockStore
}

func NewMockStore(ctrl *gomock.Controller) *MockStore {
	mock := &MockStore{ctrl: ctrl}
	mock.recorder = &MockStoreMockRecorder{mock}
	return mock
}

func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

func (m *MockStore) FindExact(ctx context.Context, normalizedContent string, qtype model.QuestionType, normalizedOptions []string) (*cache.Question, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindExact", ctx, normalizedContent, qtype, normalizedOptions)
	q, _ := ret[0].(*cache.Question)
	ok, _ := ret[1].(bool)
	err, _ := ret[2].(error)
	return q, ok, err
}

func (mr *MockStoreMockRecorder) FindExact(ctx, normalizedContent, qtype, normalizedOptions any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindExact", reflect.TypeOf((*MockStore)(nil).FindExact), ctx, normalizedContent, qtype, normalizedOptions)
}

func (m *MockStore) FindApproximate(ctx context.Context, embedder embed.Client, content string, qtype model.QuestionType, normalizedOptions []string) (*cache.Question, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindApproximate", ctx, embedder, content, qtype, normalizedOptions)
	q, _ := ret[0].(*cache.Question)
	ok, _ := ret[1].(bool)
	err, _ := ret[2].(error)
	return q, ok, err
}

func (mr *MockStoreMockRecorder) FindApproximate(ctx, embedder, content, qtype, normalizedOptions any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindApproximate", reflect.TypeOf((*MockStore)(nil).FindApproximate), ctx, embedder, content, qtype, normalizedOptions)
}

func (m *MockStore) Lookup(ctx context.Context, embedder embed.Client, q model.Query) (*cache.Question, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lookup", ctx, embedder, q)
	question, _ := ret[0].(*cache.Question)
	ok, _ := ret[1].(bool)
	err, _ := ret[2].(error)
	return question, ok, err
}

func (mr *MockStoreMockRecorder) Lookup(ctx, embedder, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lookup", reflect.TypeOf((*MockStore)(nil).Lookup), ctx, embedder, q)
}

func (m *MockStore) BatchGetAnswers(ctx context.Context, question *cache.Question, providerNames []string) (map[string]*model.Answer, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BatchGetAnswers", ctx, question, providerNames)
	out, _ := ret[0].(map[string]*model.Answer)
	err, _ := ret[1].(error)
	return out, err
}

func (mr *MockStoreMockRecorder) BatchGetAnswers(ctx, question, providerNames any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BatchGetAnswers", reflect.TypeOf((*MockStore)(nil).BatchGetAnswers), ctx, question, providerNames)
}

func (m *MockStore) WriteThrough(ctx context.Context, embedder embed.Client, q model.Query, results []cache.ProviderResult) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteThrough", ctx, embedder, q, results)
	err, _ := ret[0].(error)
	return err
}

func (mr *MockStoreMockRecorder) WriteThrough(ctx, embedder, q, results any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteThrough", reflect.TypeOf((*MockStore)(nil).WriteThrough), ctx, embedder, q, results)
}

func (m *MockStore) FindAnyAnswer(ctx context.Context, q model.Query) (*model.Answer, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindAnyAnswer", ctx, q)
	ans, _ := ret[0].(*model.Answer)
	ok, _ := ret[1].(bool)
	err, _ := ret[2].(error)
	return ans, ok, err
}

func (mr *MockStoreMockRecorder) FindAnyAnswer(ctx, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindAnyAnswer", reflect.TypeOf((*MockStore)(nil).FindAnyAnswer), ctx, q)
}

// MockEmbedClient is a mock of the embed.Client interface.
type MockEmbedClient struct {
	ctrl     *gomock.Controller
	recorder *MockEmbedClientMockRecorder
}

type MockEmbedClientMockRecorder struct {
	mock *MockEmbedClient
}

func NewMockEmbedClient(ctrl *gomock.Controller) *MockEmbedClient {
	mock := &MockEmbedClient{ctrl: ctrl}
	mock.recorder = &MockEmbedClientMockRecorder{mock}
	return mock
}

func (m *MockEmbedClient) EXPECT() *MockEmbedClientMockRecorder {
	return m.recorder
}

func (m *MockEmbedClient) Embed(ctx context.Context, text string, mode embed.Mode) ([]float32, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Embed", ctx, text, mode)
	vec, _ := ret[0].([]float32)
	err, _ := ret[1].(error)
	return vec, err
}

func (mr *MockEmbedClientMockRecorder) Embed(ctx, text, mode any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Embed", reflect.TypeOf((*MockEmbedClient)(nil).Embed), ctx, text, mode)
}

func (m *MockEmbedClient) Dimension() int {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Dimension")
	dim, _ := ret[0].(int)
	return dim
}

func (mr *MockEmbedClientMockRecorder) Dimension() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dimension", reflect.TypeOf((*MockEmbedClient)(nil).Dimension))
}

// MockAdapter is a mock of the provider.Adapter interface.
type MockAdapter struct {
	ctrl     *gomock.Controller
	recorder *MockAdapterMockRecorder
}

type MockAdapterMockRecorder struct {
	mock *MockAdapter
}

func NewMockAdapter(ctrl *gomock.Controller) *MockAdapter {
	mock := &MockAdapter{ctrl: ctrl}
	mock.recorder = &MockAdapterMockRecorder{mock}
	return mock
}

func (m *MockAdapter) EXPECT() *MockAdapterMockRecorder {
	return m.recorder
}

func (m *MockAdapter) Descriptor() provider.Descriptor {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Descriptor")
	d, _ := ret[0].(provider.Descriptor)
	return d
}

func (mr *MockAdapterMockRecorder) Descriptor() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Descriptor", reflect.TypeOf((*MockAdapter)(nil).Descriptor))
}

func (m *MockAdapter) Search(ctx context.Context, q model.Query, p model.Provider) model.Answer {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Search", ctx, q, p)
	ans, _ := ret[0].(model.Answer)
	return ans
}

func (mr *MockAdapterMockRecorder) Search(ctx, q, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Search", reflect.TypeOf((*MockAdapter)(nil).Search), ctx, q, p)
}
