package validation_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every rule holds", func() {
		v := validation.NewValidator()
		v.Field("name", "Jane").Required().MaxLength(10)
		v.Field("role", "PM").OneOf("EMPLOYEE", "PM")
		Expect(v.Validate()).To(BeNil())
	})

	It("collects every failing field into one error", func() {
		v := validation.NewValidator()
		v.Field("name", "").Required()
		v.Field("password", "short").MinLength(8)
		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Type).To(Equal(internal.ErrorTypeValidation))

		details, ok := err.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[0].Field).To(Equal("name"))
		Expect(details.Errors[1].Field).To(Equal("password"))
	})

	It("reports values outside an allowed set", func() {
		v := validation.NewValidator()
		v.Field("role", "SUPERVISOR").OneOf("EMPLOYEE", "PM")
		err := v.Validate()
		Expect(err).NotTo(BeNil())
	})

	It("treats a zero int64 as missing for Required", func() {
		v := validation.NewValidator()
		v.Field("project_manager_id", int64(0)).Required()
		Expect(v.Validate()).NotTo(BeNil())
	})
})
