package piston

import (
	"fmt"
	"strings"
)

type file struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type executeRequest struct {
	Language       string   `json:"language"`
	Version        string   `json:"version"`
	Files          []file   `json:"files"`
	Stdin          string   `json:"stdin"`
	Args           []string `json:"args"`
	CompileTimeout int64    `json:"compile_timeout"`
	RunTimeout     int64    `json:"run_timeout"`
	RunMemoryLimit int64    `json:"run_memory_limit"`
}

type stageResult struct {
	Stdout *string `json:"stdout"`
	Stderr *string `json:"stderr"`
	Output *string `json:"output"`
	Code   *int    `json:"code"`
	Signal *string `json:"signal"`
}

type executeResponse struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Run      *stageResult `json:"run"`
	Compile  *stageResult `json:"compile"`
	Message  string       `json:"message"`
}

// missingExitCode stands in for an absent exit status so it never reads as success.
const missingExitCode = -1

func (r executeResponse) outcome() Outcome {
	if r.Compile != nil {
		compiled := r.Compile.outcome(StageCompile)
		if compiled.ExitCode != 0 {
			if compiled.Stderr == "" {
				compiled.Stderr = "compilation failed"
			}
			return compiled
		}
	}

	if r.Run == nil {
		stderr := strings.TrimSpace(r.Message)
		if stderr == "" {
			stderr = "execution service returned no run result"
		}
		return Outcome{Stderr: stderr, ExitCode: missingExitCode, Stage: StageRun}
	}

	return r.Run.outcome(StageRun)
}

func (s stageResult) outcome(stage string) Outcome {
	outcome := Outcome{
		Stdout:   deref(s.Stdout),
		Stderr:   deref(s.Stderr),
		ExitCode: missingExitCode,
		Signal:   deref(s.Signal),
		Stage:    stage,
	}

	if s.Code != nil {
		outcome.ExitCode = *s.Code
	}

	if outcome.Signal != "" && outcome.ExitCode == 0 {
		outcome.ExitCode = missingExitCode
	}

	if outcome.ExitCode != 0 && strings.TrimSpace(outcome.Stderr) == "" && outcome.Signal != "" {
		outcome.Stderr = fmt.Sprintf("terminated by signal %s", outcome.Signal)
	}

	return outcome
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
