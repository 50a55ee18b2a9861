package notifications

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/gradsync/portal/internal/api"
	"github.com/gradsync/portal/internal/core/events"
	"github.com/gradsync/portal/internal/portaltest"
)

type mockCredentials struct {
	present atomic.Bool
}

func (m *mockCredentials) HasCredential() bool { return m.present.Load() }

var _ = ginkgo.Describe("Poller", func() {
	var (
		client      *mockClient
		service     *Service
		credentials *mockCredentials
		poller      *Poller
	)

	ginkgo.BeforeEach(func() {
		client = newMockClient()
		service = NewService(client, NewStore(), 50, testLogger())
		credentials = &mockCredentials{}
		credentials.present.Store(true)
		poller = NewPoller(service, credentials, 10*time.Millisecond, nil, testLogger())
	})

	ginkgo.It("should refresh repeatedly while running", func() {
		// When
		stop := poller.Start(context.Background())
		defer stop()

		// Then
		gomega.Eventually(func() int64 {
			return client.fetchCalls.Load()
		}, time.Second, 5*time.Millisecond).Should(gomega.BeNumerically(">=", 3))
	})

	ginkgo.It("should stop fetching once the stop function is called", func() {
		// Given
		stop := poller.Start(context.Background())
		gomega.Eventually(func() int64 {
			return client.fetchCalls.Load()
		}, time.Second, 5*time.Millisecond).Should(gomega.BeNumerically(">=", 2))

		// When
		stop()
		settled := client.fetchCalls.Load()

		// Then
		gomega.Consistently(func() int64 {
			return client.fetchCalls.Load()
		}, 100*time.Millisecond, 10*time.Millisecond).Should(gomega.BeNumerically("<=", settled+1))
	})

	ginkgo.It("should skip ticks while no credential is installed", func() {
		// Given
		credentials.present.Store(false)

		// When
		stop := poller.Start(context.Background())
		defer stop()

		// Then
		gomega.Consistently(func() int64 {
			return client.fetchCalls.Load()
		}, 100*time.Millisecond, 10*time.Millisecond).Should(gomega.Equal(int64(0)))
	})

	ginkgo.It("should resume fetching when a credential appears", func() {
		// Given
		credentials.present.Store(false)
		stop := poller.Start(context.Background())
		defer stop()

		// When
		credentials.present.Store(true)

		// Then
		gomega.Eventually(func() int64 {
			return client.fetchCalls.Load()
		}, time.Second, 5*time.Millisecond).Should(gomega.BeNumerically(">=", 1))
	})

	ginkgo.It("should keep polling after a failed fetch", func() {
		// Given
		client.setError(errors.New("backend down"))

		// When
		stop := poller.Start(context.Background())
		defer stop()

		// Then
		gomega.Eventually(func() int64 {
			return client.fetchCalls.Load()
		}, time.Second, 5*time.Millisecond).Should(gomega.BeNumerically(">=", 3))
	})

	ginkgo.It("should stop hitting a real backend once the stop function is called", func() {
		// Given: a poller wired through the HTTP client to a fake backend
		backend := portaltest.NewServer()
		defer backend.Close()

		apiClient := api.NewClient(api.Config{BaseURL: backend.URL()}, testLogger())
		apiClient.SetAuthToken(portaltest.DefaultAccessToken)
		httpService := NewService(apiClient, NewStore(), 50, testLogger())
		httpPoller := NewPoller(httpService, credentials, 10*time.Millisecond, nil, testLogger())

		stop := httpPoller.Start(context.Background())
		gomega.Eventually(func() int64 {
			return backend.NotificationFetches()
		}, time.Second, 5*time.Millisecond).Should(gomega.BeNumerically(">=", 2))

		// When
		stop()
		settled := backend.NotificationFetches()

		// Then: at most one in-flight request lands after the stop
		gomega.Consistently(func() int64 {
			return backend.NotificationFetches()
		}, 100*time.Millisecond, 10*time.Millisecond).Should(gomega.BeNumerically("<=", settled+1))
	})

	ginkgo.It("should publish a refresh event after each successful poll", func() {
		// Given
		bus := events.NewEventBus(testLogger())
		var published atomic.Int64
		bus.Subscribe(events.TypeNotificationsRefreshed, func(ctx context.Context, event events.Event) error {
			published.Add(1)
			return nil
		})
		poller = NewPoller(service, credentials, 10*time.Millisecond, bus, testLogger())

		// When
		stop := poller.Start(context.Background())
		defer stop()

		// Then
		gomega.Eventually(func() int64 {
			return published.Load()
		}, time.Second, 5*time.Millisecond).Should(gomega.BeNumerically(">=", 1))
	})
})
