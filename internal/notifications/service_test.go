package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	notificationDatamodel "github.com/gradsync/portal/internal/core/datamodel/notification"
)

// Mock backend client for testing
type mockClient struct {
	mu            sync.Mutex
	notifications []notificationDatamodel.Notification
	unreadCount   int
	returnError   bool
	errorToReturn error

	fetchCalls   atomic.Int64
	markReadIDs  []int64
	markAllCalls int
	deleteIDs    []int64

	// when set, the numbered Notifications call snapshots its payload and
	// then stalls in flight until the gate is closed
	fetchGate chan struct{}
	heldFetch int64
}

func newMockClient() *mockClient {
	return &mockClient{notifications: []notificationDatamodel.Notification{}}
}

func (m *mockClient) Notifications(ctx context.Context, limit int) ([]notificationDatamodel.Notification, error) {
	call := m.fetchCalls.Add(1)

	m.mu.Lock()
	if m.returnError {
		err := m.errorToReturn
		m.mu.Unlock()
		return nil, err
	}
	list := make([]notificationDatamodel.Notification, len(m.notifications))
	copy(list, m.notifications)
	gate := m.fetchGate
	held := m.heldFetch
	m.mu.Unlock()

	if gate != nil && call == held {
		<-gate
	}
	return list, nil
}

func (m *mockClient) UnreadCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.returnError {
		return 0, m.errorToReturn
	}
	return m.unreadCount, nil
}

func (m *mockClient) MarkNotificationRead(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.returnError {
		return m.errorToReturn
	}
	m.markReadIDs = append(m.markReadIDs, id)
	return nil
}

func (m *mockClient) MarkAllNotificationsRead(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.returnError {
		return m.errorToReturn
	}
	m.markAllCalls++
	return nil
}

func (m *mockClient) DeleteNotification(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.returnError {
		return m.errorToReturn
	}
	m.deleteIDs = append(m.deleteIDs, id)
	return nil
}

func (m *mockClient) setNotifications(list []notificationDatamodel.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = list
}

// holdFetch delays the numbered Notifications call until the returned
// channel is closed, simulating a slow response.
func (m *mockClient) holdFetch(call int64) chan struct{} {
	gate := make(chan struct{})
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchGate = gate
	m.heldFetch = call
	return gate
}

func (m *mockClient) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnError = true
	m.errorToReturn = err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = ginkgo.Describe("Service", func() {
	var (
		service *Service
		client  *mockClient
		store   *Store
	)

	ginkgo.BeforeEach(func() {
		client = newMockClient()
		store = NewStore()
		service = NewService(client, store, 50, testLogger())
	})

	ginkgo.Describe("Refresh", func() {
		ginkgo.It("should replace the store with the backend list", func() {
			// Given
			client.setNotifications([]notificationDatamodel.Notification{
				makeNotification(1, false),
				makeNotification(2, true),
			})

			// When
			err := service.Refresh(context.Background())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(store.Len()).To(gomega.Equal(2))
			gomega.Expect(store.UnreadCount()).To(gomega.Equal(1))
		})

		ginkgo.It("should drop a response that resolves after a newer one was applied", func() {
			// Given: the first fetch stalls in flight holding the old list
			client.setNotifications([]notificationDatamodel.Notification{makeNotification(1, false)})
			release := client.holdFetch(1)

			firstDone := make(chan error, 1)
			go func() {
				firstDone <- service.Refresh(context.Background())
			}()
			gomega.Eventually(func() int64 {
				return client.fetchCalls.Load()
			}, time.Second, 5*time.Millisecond).Should(gomega.Equal(int64(1)))

			// When: a second refresh overtakes it, then the slow response lands
			client.setNotifications([]notificationDatamodel.Notification{
				makeNotification(2, false),
				makeNotification(3, false),
			})
			gomega.Expect(service.Refresh(context.Background())).To(gomega.Succeed())
			close(release)
			gomega.Eventually(firstDone, time.Second, 5*time.Millisecond).Should(gomega.Receive(gomega.BeNil()))

			// Then: the overtaken response was discarded, not applied
			gomega.Expect(store.Len()).To(gomega.Equal(2))
			gomega.Expect(store.All()[0].ID).To(gomega.Equal(int64(2)))
			gomega.Expect(store.UnreadCount()).To(gomega.Equal(2))
		})

		ginkgo.It("should leave the store untouched when the fetch fails", func() {
			// Given
			client.setNotifications([]notificationDatamodel.Notification{makeNotification(1, false)})
			gomega.Expect(service.Refresh(context.Background())).To(gomega.Succeed())
			client.setError(errors.New("backend down"))

			// When
			err := service.Refresh(context.Background())

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(store.Len()).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("MarkRead", func() {
		ginkgo.It("should mutate locally and notify the backend", func() {
			// Given
			store.ReplaceAll([]notificationDatamodel.Notification{makeNotification(1, false)})

			// When
			service.MarkRead(context.Background(), 1)

			// Then
			gomega.Expect(store.UnreadCount()).To(gomega.Equal(0))
			gomega.Expect(client.markReadIDs).To(gomega.ContainElement(int64(1)))
		})

		ginkgo.It("should keep the local mutation when the backend call fails", func() {
			// Given
			store.ReplaceAll([]notificationDatamodel.Notification{makeNotification(1, false)})
			client.setError(errors.New("backend down"))

			// When
			service.MarkRead(context.Background(), 1)

			// Then
			gomega.Expect(store.UnreadCount()).To(gomega.Equal(0))
			gomega.Expect(store.All()[0].IsRead).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("MarkAllRead", func() {
		ginkgo.It("should zero the counter and notify the backend", func() {
			// Given
			store.ReplaceAll([]notificationDatamodel.Notification{
				makeNotification(1, false),
				makeNotification(2, false),
			})

			// When
			service.MarkAllRead(context.Background())

			// Then
			gomega.Expect(store.UnreadCount()).To(gomega.Equal(0))
			gomega.Expect(client.markAllCalls).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should remove locally and notify the backend", func() {
			// Given
			store.ReplaceAll([]notificationDatamodel.Notification{
				makeNotification(1, false),
				makeNotification(2, true),
			})

			// When
			service.Delete(context.Background(), 1)

			// Then
			gomega.Expect(store.Len()).To(gomega.Equal(1))
			gomega.Expect(store.UnreadCount()).To(gomega.Equal(0))
			gomega.Expect(client.deleteIDs).To(gomega.ContainElement(int64(1)))
		})
	})

	ginkgo.Describe("UnreadCount", func() {
		ginkgo.It("should return the backend counter", func() {
			// Given
			client.unreadCount = 7

			// When
			count, err := service.UnreadCount(context.Background())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(7))
		})
	})
})
