package api

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/gradsync/portal/internal"
	approvalDatamodel "github.com/gradsync/portal/internal/core/datamodel/approval"
	notificationDatamodel "github.com/gradsync/portal/internal/core/datamodel/notification"
	"github.com/gradsync/portal/internal/portaltest"
)

func TestAPI(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "API Client Suite")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = ginkgo.Describe("Client", func() {
	var (
		backend *portaltest.Server
		client  *Client
	)

	ginkgo.BeforeEach(func() {
		backend = portaltest.NewServer()
		client = NewClient(Config{BaseURL: backend.URL()}, testLogger())
	})

	ginkgo.AfterEach(func() {
		backend.Close()
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return the token pair and raw user", func() {
			// When
			resp, err := client.Login(context.Background(), "amal", "secret")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.Access).To(gomega.Equal(portaltest.DefaultAccessToken))
			gomega.Expect(resp.Refresh).To(gomega.Equal(portaltest.DefaultRefreshToken))
			gomega.Expect(resp.User.Username).To(gomega.Equal("amal"))
			gomega.Expect(resp.User.Roles).To(gomega.HaveLen(1))
			gomega.Expect(resp.User.Roles[0].Label).To(gomega.Equal("student"))
		})

		ginkgo.It("should map invalid credentials to an unauthorized error", func() {
			// When
			resp, err := client.Login(context.Background(), "amal", "wrong")

			// Then
			gomega.Expect(resp).To(gomega.BeNil())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeUnauthorized))
		})

		ginkgo.It("should hand back whatever user payload the backend sends", func() {
			// Given: an older backend shape with pk and a plain-string role
			backend.SetLoginUser(map[string]interface{}{
				"pk":         7,
				"first_name": "Noor",
				"last_name":  "Khalil",
				"roles":      []string{"dean"},
			})

			// When
			resp, err := client.Login(context.Background(), "noor", "secret")

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.User.ID).To(gomega.BeZero())
			gomega.Expect(resp.User.PK).To(gomega.Equal(int64(7)))
			gomega.Expect(resp.User.FirstName).To(gomega.Equal("Noor"))
			gomega.Expect(resp.User.Roles).To(gomega.HaveLen(1))
			gomega.Expect(resp.User.Roles[0].Label).To(gomega.Equal("dean"))
		})

		ginkgo.It("should reject empty credentials before any request", func() {
			// When
			resp, err := client.Login(context.Background(), "", "")

			// Then
			gomega.Expect(resp).To(gomega.BeNil())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})
	})

	ginkgo.Describe("authorization header", func() {
		ginkgo.It("should attach the installed token to every request", func() {
			// Given
			client.SetAuthToken(portaltest.DefaultAccessToken)

			// When
			_, err := client.Notifications(context.Background(), 10)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(backend.LastAuthorization()).To(gomega.Equal("Bearer " + portaltest.DefaultAccessToken))
		})

		ginkgo.It("should fail protected calls once the token is cleared", func() {
			// Given
			client.SetAuthToken(portaltest.DefaultAccessToken)
			client.SetAuthToken("")

			// When
			_, err := client.Notifications(context.Background(), 10)

			// Then
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeUnauthorized))
		})

		ginkgo.It("should map a rejected token to the token-expired error", func() {
			// Given: the backend rotated its accepted token away from ours
			client.SetAuthToken(portaltest.DefaultAccessToken)
			backend.SetAccessToken("rotated-token")

			// When
			_, err := client.Notifications(context.Background(), 10)

			// Then
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeTokenExpired))
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})

		ginkgo.It("should report whether a token is installed", func() {
			gomega.Expect(client.HasAuthToken()).To(gomega.BeFalse())
			client.SetAuthToken("x")
			gomega.Expect(client.HasAuthToken()).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Notifications", func() {
		ginkgo.BeforeEach(func() {
			client.SetAuthToken(portaltest.DefaultAccessToken)
			backend.SetNotifications([]notificationDatamodel.Notification{
				{ID: 1, Title: "a", Type: notificationDatamodel.TypeSystemInfo, IsRead: false},
				{ID: 2, Title: "b", Type: notificationDatamodel.TypeReminder, IsRead: true},
			})
		})

		ginkgo.It("should decode a bare array response", func() {
			// When
			list, err := client.Notifications(context.Background(), 10)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(list).To(gomega.HaveLen(2))
			gomega.Expect(list[0].ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should decode a paginated results envelope", func() {
			// Given
			backend.SetPaginated(true)

			// When
			list, err := client.Notifications(context.Background(), 10)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(list).To(gomega.HaveLen(2))
		})

		ginkgo.It("should fetch the unread counter", func() {
			// When
			count, err := client.UnreadCount(context.Background())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(1))
		})

		ginkgo.It("should mark one notification read on the backend", func() {
			// When
			err := client.MarkNotificationRead(context.Background(), 1)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			count, err := client.UnreadCount(context.Background())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(0))
		})

		ginkgo.It("should map an unknown notification to its lookup code", func() {
			// When
			err := client.MarkNotificationRead(context.Background(), 99)

			// Then
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeNotFound))
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeNotificationNotFound))
		})

		ginkgo.It("should delete a notification on the backend", func() {
			// When
			err := client.DeleteNotification(context.Background(), 1)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			list, err := client.Notifications(context.Background(), 10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(list).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("decodeNotificationList", func() {
		ginkgo.It("should fall back to empty on a non-sequence payload", func() {
			gomega.Expect(decodeNotificationList([]byte(`{"unexpected":"shape"}`))).To(gomega.BeEmpty())
			gomega.Expect(decodeNotificationList([]byte(`null`))).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("invitations and approvals", func() {
		ginkgo.BeforeEach(func() {
			client.SetAuthToken(portaltest.DefaultAccessToken)
			backend.SetInvitations([]approvalDatamodel.GroupInvitation{
				{ID: 1, Status: approvalDatamodel.InvitationPending},
			})
			backend.SetApprovals([]approvalDatamodel.ApprovalRequest{
				{ID: 5, Type: "group_creation", Status: approvalDatamodel.ApprovalPending},
			})
		})

		ginkgo.It("should list invitations", func() {
			// When
			list, err := client.Invitations(context.Background())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(list).To(gomega.HaveLen(1))
			gomega.Expect(list[0].ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should list pending approvals from a results envelope", func() {
			// Given
			backend.SetPaginated(true)

			// When
			list, err := client.PendingApprovals(context.Background())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(list).To(gomega.HaveLen(1))
			gomega.Expect(list[0].Status).To(gomega.Equal(approvalDatamodel.ApprovalPending))
		})

		ginkgo.It("should accept an invitation", func() {
			// When
			err := client.RespondInvitation(context.Background(), 1, true)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an approval", func() {
			// When
			err := client.RespondApproval(context.Background(), 5, false)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should map an unknown invitation to its lookup code", func() {
			// When
			err := client.RespondInvitation(context.Background(), 99, true)

			// Then
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeNotFound))
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvitationNotFound))
		})

		ginkgo.It("should map an unknown approval to its lookup code", func() {
			// When
			err := client.RespondApproval(context.Background(), 99, true)

			// Then
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeApprovalNotFound))
		})
	})
})
