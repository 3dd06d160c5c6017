package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/timing/pipeline"
)

var _ = Describe("Control", func() {
	var c *pipeline.Control

	BeforeEach(func() {
		c = pipeline.NewControl()
	})

	It("should start normal with fetch enabled", func() {
		Expect(c.State()).To(Equal(pipeline.ControlNormal))
		Expect(c.FetchEnabled()).To(BeTrue())
		Expect(c.ConsumeRedirect()).To(BeFalse())
	})

	It("should stall and resume on issue", func() {
		c.Stall()
		Expect(c.Stalled()).To(BeTrue())
		c.Stall()
		Expect(c.State()).To(Equal(pipeline.ControlStalled))
		c.Issue()
		Expect(c.State()).To(Equal(pipeline.ControlNormal))
	})

	It("should consume a redirect exactly once", func() {
		c.DisableFetch()
		c.Redirect()
		Expect(c.FetchEnabled()).To(BeTrue())
		Expect(c.State()).To(Equal(pipeline.ControlRedirectPending))

		Expect(c.ConsumeRedirect()).To(BeTrue())
		Expect(c.ConsumeRedirect()).To(BeFalse())
		Expect(c.State()).To(Equal(pipeline.ControlNormal))
	})

	It("should drop a stall on redirect", func() {
		c.Stall()
		c.Redirect()
		Expect(c.Stalled()).To(BeFalse())
	})

	It("should reset", func() {
		c.Stall()
		c.DisableFetch()
		c.Reset()
		Expect(c.State()).To(Equal(pipeline.ControlNormal))
		Expect(c.FetchEnabled()).To(BeTrue())
	})

	It("should name states", func() {
		Expect(pipeline.ControlRedirectPending.String()).To(Equal("RedirectPending"))
		Expect(pipeline.StageDecode.String()).To(Equal("Decode/RF"))
	})
})
