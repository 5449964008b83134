package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/mock"
	"github.com/tradutema/delivery/internal/entity"
	"github.com/tradutema/delivery/internal/service"
)

type ValidatorMock struct {
	mock.Mock
}

func (m *ValidatorMock) Var(_ context.Context, field any, tag string) error {
	args := m.Called(field, tag)

	return args.Error(0)
}

type WorkflowMock struct {
	mock.Mock
}

func (m *WorkflowMock) Begin(_ context.Context, token string) (service.RedemptionView, error) {
	args := m.Called(token)

	return args.Get(0).(service.RedemptionView), args.Error(1)
}

func (m *WorkflowMock) Redeem(_ context.Context, token string, files []entity.FileUpload) (service.RedemptionResult, error) {
	args := m.Called(token, files)

	return args.Get(0).(service.RedemptionResult), args.Error(1)
}

func sendTestRequest(target, method, contentType string, body io.Reader, handler http.HandlerFunc) *http.Response {
	request := httptest.NewRequest(method, target, body)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	handler(w, request)

	return w.Result()
}
