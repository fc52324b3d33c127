package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	domainmocks "ftqmap.dev/pkg/ftqmap/internal/domain/mocks"
)

// newMockedRootCmd returns a fresh root command with sub attached and the
// package workflow replaced by a mock for the duration of the test.
func newMockedRootCmd(t *testing.T, sub *cobra.Command) (*cobra.Command, *domainmocks.MockWorkflow) {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() { workflow = originalWorkflow })

	return cmd, mockWorkflow
}
