package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-loans-go/cmd/lms/output"
)

func Test_Output_WritesToConfiguredWriter(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	output.SetOutput(&buf)
	t.Cleanup(func() { output.SetOutput(nil) })

	// act
	output.Success("created book: %s", "1984")
	output.Error("user %q does not exist", "nobody")
	output.Section("Books")

	// assert
	assert.Contains(t, buf.String(), "created book: 1984", "Should print the formatted message")
	assert.Contains(t, buf.String(), `user "nobody" does not exist`, "Should print the error message")
	assert.Contains(t, buf.String(), "Books", "Should print the section title")
}

func Test_LoanStatusIcon_DiffersPerState(t *testing.T) {
	returned := output.LoanStatusIcon("returned", 0)
	borrowed := output.LoanStatusIcon("borrowed", 0)
	overdue := output.LoanStatusIcon("borrowed", 3)

	assert.NotEqual(t, returned, borrowed)
	assert.NotEqual(t, borrowed, overdue, "Should flag overdue loans")
}
