package output

import (
	"encoding/json"
	"net/netip"

	"github.com/pranshuparmar/listeners/internal/pipeline"
	"github.com/pranshuparmar/listeners/internal/target"
	"github.com/pranshuparmar/listeners/pkg/model"
)

type jsonListener struct {
	PID      uint32         `json:"pid"`
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Address  netip.Addr     `json:"address"`
	Port     uint16         `json:"port"`
	Protocol model.Protocol `json:"protocol"`
}

// jsonResult always carries the field its target selects, empty or not.
type jsonResult struct {
	Target    string           `json:"target"`
	Listeners *[]jsonListener  `json:"listeners,omitempty"`
	Processes *[]model.Process `json:"processes,omitempty"`
	Ports     *[]uint16        `json:"ports,omitempty"`
}

func ToJSON(res pipeline.Result) (string, error) {
	out := jsonResult{Target: res.Target.String()}
	switch res.Target.Kind {
	case target.Port:
		procs := append([]model.Process{}, res.Processes...)
		out.Processes = &procs
	case target.PID, target.Name:
		ports := append([]uint16{}, res.Ports...)
		out.Ports = &ports
	default:
		ls := make([]jsonListener, 0, len(res.Listeners))
		for _, l := range res.Listeners {
			ls = append(ls, jsonListener{
				PID:      l.Process.PID,
				Name:     l.Process.Name,
				Path:     l.Process.Path,
				Address:  l.Socket.Addr(),
				Port:     l.Socket.Port(),
				Protocol: l.Protocol,
			})
		}
		out.Listeners = &ls
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
