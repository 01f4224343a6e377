// Package mocks provides gomock mocks for the service ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockJobBackend(ctrl)
//	backend.EXPECT().Start(gomock.Any(), job.KindScraping).Return(ports.Ack{Message: "started"}, nil)
package mocks

// AuditLog: Record, List. FaultNotifier: Dispatch.
// JobBackend: Start, Stop, Status and the three deletes. LogStreamer: OpenLogStream.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/grailed-admin/internal/ports AuditLog,FaultNotifier,JobBackend,LogStreamer
