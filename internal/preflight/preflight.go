// Package preflight checks a build context before it is handed to the
// hosting platform, so broken references fail here instead of mid-build.
package preflight

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsakani-green/envkeep/internal/report"
)

// Options configures a preflight run.
type Options struct {
	Dockerfile string // path to the Dockerfile
	Context    string // build context directory; defaults to the Dockerfile's dir
	EnvFile    string // name of the env file to check against .dockerignore
}

// Run inspects the Dockerfile and build context and returns a report.
func Run(opts Options) (*report.Report, error) {
	rep := &report.Report{}

	if opts.Context == "" {
		opts.Context = filepath.Dir(opts.Dockerfile)
	}
	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}

	df, err := os.Open(opts.Dockerfile)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Dockerfile, err)
	}
	defer df.Close()

	var (
		hasExpose bool
		hasCmd    bool
		copiesEnv bool
	)

	scanner := bufio.NewScanner(df)
	var cont string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			cont += strings.TrimSuffix(line, "\\") + " "
			continue
		}
		line = cont + line
		cont = ""

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case "COPY", "ADD":
			srcs := copySources(fields[1:])
			for _, src := range srcs {
				if src == opts.EnvFile {
					copiesEnv = true
				}
				checkSource(rep, opts.Context, src)
			}
		case "EXPOSE":
			hasExpose = true
		case "CMD", "ENTRYPOINT":
			hasCmd = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Dockerfile, err)
	}

	if !hasExpose {
		rep.Add(report.SeverityWarning, "dockerfile", "", "no EXPOSE instruction; the platform cannot infer the port")
	}
	if !hasCmd {
		rep.Add(report.SeverityError, "dockerfile", "", "no CMD or ENTRYPOINT; the image has no start command")
	}
	if copiesEnv {
		rep.Add(report.SeverityError, "dockerfile", "", opts.EnvFile+" is copied into the image; secrets belong in platform env vars")
	} else if !ignoresEnv(opts.Context, opts.EnvFile) {
		rep.Add(report.SeverityWarning, "dockerignore", "", opts.EnvFile+" is not listed in .dockerignore")
	}

	return rep, nil
}

// copySources strips flags and the destination from COPY/ADD arguments.
func copySources(args []string) []string {
	var srcs []string
	for _, a := range args {
		if strings.HasPrefix(a, "--") {
			continue
		}
		srcs = append(srcs, a)
	}
	if len(srcs) < 2 {
		return nil
	}
	return srcs[:len(srcs)-1]
}

// checkSource verifies a COPY/ADD source exists in the build context. The
// referenced requirements file being missing is the classic fail-mid-build
// case this catches.
func checkSource(rep *report.Report, context, src string) {
	if strings.Contains(src, "://") {
		return // ADD from URL
	}
	if strings.ContainsAny(src, "*?[") {
		matches, err := filepath.Glob(filepath.Join(context, src))
		if err == nil && len(matches) == 0 {
			rep.Add(report.SeverityError, "copy", "", fmt.Sprintf("COPY source %q matches nothing in the build context", src))
		}
		return
	}
	if _, err := os.Stat(filepath.Join(context, src)); err != nil {
		rep.Add(report.SeverityError, "copy", "", fmt.Sprintf("COPY source %q not found in the build context", src))
	}
}

func ignoresEnv(context, envFile string) bool {
	data, err := os.ReadFile(filepath.Join(context, ".dockerignore"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == envFile || line == "*.env" || line == envFile+"*" {
			return true
		}
	}
	return false
}
