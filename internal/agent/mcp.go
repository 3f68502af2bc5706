package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultMCPServers are the tool servers launched when none are configured.
var DefaultMCPServers = []string{
	"npx -y @openbnb/mcp-server-airbnb --ignore-robots-txt",
	"npx -y @gongrzhe/server-travelplanner-mcp",
}

// MCPSource launches MCP servers as child processes and exposes their
// tools. A server that fails to start is logged and skipped.
type MCPSource struct {
	Commands []string
	// Env is appended to the parent environment of every child process.
	Env []string
	// Timeout bounds each tool call.
	Timeout time.Duration

	transport func(command string) (mcp.Transport, error)
}

func NewMCPSource(commands []string, env []string, timeout time.Duration) *MCPSource {
	if len(commands) == 0 {
		commands = DefaultMCPServers
	}
	return &MCPSource{Commands: commands, Env: env, Timeout: timeout}
}

func (s *MCPSource) commandTransport(command string) (mcp.Transport, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Env = append(os.Environ(), s.Env...)
	return &mcp.CommandTransport{Command: cmd}, nil
}

func (s *MCPSource) Open(ctx context.Context) ([]Tool, func() error, error) {
	newTransport := s.transport
	if newTransport == nil {
		newTransport = s.commandTransport
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "ai-travel-planner", Version: "1.0.0"}, nil)

	var (
		sessions []*mcp.ClientSession
		tools    []Tool
		seen     = map[string]bool{}
	)
	for _, command := range s.Commands {
		t, err := newTransport(command)
		if err != nil {
			log.Printf("agent: mcp server %q: %v", command, err)
			continue
		}
		session, err := client.Connect(ctx, t, nil)
		if err != nil {
			log.Printf("agent: mcp connect %q: %v", command, err)
			continue
		}
		sessions = append(sessions, session)

		listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
		if err != nil {
			log.Printf("agent: mcp list tools %q: %v", command, err)
			continue
		}
		for _, mt := range listed.Tools {
			if seen[mt.Name] {
				continue
			}
			seen[mt.Name] = true
			tools = append(tools, s.wrap(session, mt))
		}
	}

	closeAll := func() error {
		var first error
		for _, sess := range sessions {
			if err := sess.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return tools, closeAll, nil
}

func (s *MCPSource) wrap(session *mcp.ClientSession, mt *mcp.Tool) Tool {
	name := mt.Name
	return Tool{
		Name:        name,
		Description: mt.Description,
		Parameters:  schemaObject(mt.InputSchema),
		Invoke: func(ctx context.Context, args map[string]any) (string, error) {
			if s.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.Timeout)
				defer cancel()
			}
			res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
			if err != nil {
				return "", err
			}
			text := strings.Join(flattenContent(res.Content), "\n")
			if res.IsError {
				return "", fmt.Errorf("%s: %s", name, text)
			}
			return text, nil
		},
	}
}

// schemaObject normalizes a tool input schema to a plain JSON object.
func schemaObject(schema any) map[string]any {
	out := map[string]any{}
	if schema != nil {
		if b, err := json.Marshal(schema); err == nil {
			_ = json.Unmarshal(b, &out)
		}
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out
}

func flattenContent(content []mcp.Content) []string {
	texts := make([]string, 0, len(content))
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	return texts
}
