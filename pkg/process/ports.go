package process

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	psprocess "github.com/shirou/gopsutil/v3/process"
)

// listeningPorts returns the ports held in LISTEN state by pid or any of its
// descendants. npm hands the actual server off to a child node process, so
// the whole tree has to be walked.
func listeningPorts(logger zerolog.Logger, pid int) ([]uint32, error) {
	p, err := psprocess.NewProcess(int32(pid))
	if err != nil {
		return nil, errors.Wrapf(err, "lookup pid %d", pid)
	}

	portSet := make(map[uint32]struct{})
	visited := make(map[int32]struct{})
	collectListeningPorts(logger, p, visited, portSet)

	ports := make([]uint32, 0, len(portSet))
	for port := range portSet {
		ports = append(ports, port)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports, nil
}

func collectListeningPorts(logger zerolog.Logger, proc *psprocess.Process, visited map[int32]struct{}, portSet map[uint32]struct{}) {
	if proc == nil {
		return
	}

	pid := proc.Pid
	if _, seen := visited[pid]; seen {
		return
	}
	visited[pid] = struct{}{}

	name, _ := proc.Name()

	conns, err := proc.Connections()
	if err != nil {
		logger.Debug().Err(err).Int32("pid", pid).Str("process", name).Msg("Failed to get process connections")
	} else {
		for _, conn := range conns {
			if conn.Status == "LISTEN" {
				portSet[conn.Laddr.Port] = struct{}{}
			}
		}
	}

	children, err := proc.Children()
	if err != nil {
		// gopsutil reports "no children" as an error too
		logger.Trace().Err(err).Int32("pid", pid).Str("process", name).Msg("Failed to get child processes")
		return
	}

	for _, child := range children {
		collectListeningPorts(logger, child, visited, portSet)
	}
}
