package tqc_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTQC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TQC Suite")
}
