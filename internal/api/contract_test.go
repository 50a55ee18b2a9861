package api

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// The client and api/openapi3.yml must agree on every endpoint it calls;
// this keeps the document honest as the client grows.
var _ = ginkgo.Describe("OpenAPI contract", func() {
	var doc *openapi3.T

	ginkgo.BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../api/openapi3.yml")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(doc.Validate(context.Background())).To(gomega.Succeed())
	})

	ginkgo.It("should document every endpoint the client calls", func() {
		calls := []struct {
			method string
			path   string
		}{
			{http.MethodPost, "/auth/login/"},
			{http.MethodGet, "/notifications/"},
			{http.MethodGet, "/notifications/unread-count/"},
			{http.MethodPost, "/notifications/{id}/mark-read/"},
			{http.MethodPost, "/notifications/mark-all-read/"},
			{http.MethodDelete, "/notifications/{id}/"},
			{http.MethodGet, "/invitations/"},
			{http.MethodPost, "/invitations/{id}/respond/"},
			{http.MethodGet, "/approvals/pending/"},
			{http.MethodPost, "/approvals/{id}/respond/"},
		}

		for _, call := range calls {
			item := doc.Paths.Find(call.path)
			gomega.Expect(item).ToNot(gomega.BeNil(), "path %s is missing from the document", call.path)
			gomega.Expect(item.GetOperation(call.method)).ToNot(gomega.BeNil(),
				"operation %s %s is missing from the document", call.method, call.path)
		}
	})

	ginkgo.It("should require a bearer credential on protected endpoints", func() {
		item := doc.Paths.Find("/notifications/")
		gomega.Expect(item).ToNot(gomega.BeNil())

		operation := item.GetOperation(http.MethodGet)
		gomega.Expect(operation.Security).ToNot(gomega.BeNil())
	})

	ginkgo.It("should leave the login endpoint open", func() {
		item := doc.Paths.Find("/auth/login/")
		gomega.Expect(item).ToNot(gomega.BeNil())

		operation := item.GetOperation(http.MethodPost)
		gomega.Expect(operation.Security).To(gomega.BeNil())
	})
})
