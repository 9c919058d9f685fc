package dispatch

import (
	"github.com/alibahadircoskun/ansible-network-mcp/internal/engine"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/inventory"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/playbook"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/runner"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/vars"
	"github.com/alibahadircoskun/ansible-network-mcp/internal/workspace"
)

// Deps bundles everything the tool handlers act on.
type Deps struct {
	Workspace *workspace.Workspace
	Inventory *inventory.Store
	Vars      *vars.Store
	Playbooks *playbook.Store
	Engine    *engine.Engine
	Run       runner.Runner
}

// BuildTools assembles the full tool table. Registration order is the
// order tools are listed to callers.
func BuildTools(d Deps) []Tool {
	var tools []Tool
	tools = append(tools, fileTools(d)...)
	tools = append(tools, inventoryTools(d)...)
	tools = append(tools, varTools(d)...)
	tools = append(tools, playbookTools(d)...)
	tools = append(tools, deviceTools(d)...)
	return tools
}

// confirmGate is the reply for destructive tools called without
// confirm=yes. The operation is not performed.
func confirmGate(what string) string {
	return "WARNING: " + what + " is permanent (a backup is taken first). " +
		`Call again with confirm="yes" to proceed.`
}

func arg(name, desc string) ArgSpec {
	return ArgSpec{Name: name, Description: desc}
}

func reqArg(name, desc string) ArgSpec {
	return ArgSpec{Name: name, Description: desc, Required: true}
}
