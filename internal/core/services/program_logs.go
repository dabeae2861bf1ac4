package services

import (
	"fmt"
	"strings"

	"github.com/vncsmyrnk/pollprogram/internal/core/domain"
)

// programLogs collects the log lines a single instruction emits, in the
// shape a validator reports them.
type programLogs struct {
	programID domain.Address
	lines     []string
}

func newProgramLogs(programID domain.Address, name domain.InstructionName) *programLogs {
	l := &programLogs{programID: programID}
	l.lines = append(l.lines, fmt.Sprintf("Program %s invoke [1]", programID))
	l.msg("Instruction: %s", pascalCase(string(name)))
	return l
}

func (l *programLogs) msg(format string, args ...any) {
	l.lines = append(l.lines, "Program log: "+fmt.Sprintf(format, args...))
}

func (l *programLogs) success() {
	l.lines = append(l.lines, fmt.Sprintf("Program %s success", l.programID))
}

func pascalCase(snake string) string {
	var b strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
