package mocks

import (
	"vitalog/tracker/defs"
)

type Messager struct {
	Channels map[string][]defs.MessageData
}

func (m *Messager) SendMessage(msgData defs.MessageData, chName string) (uint64, error) {
	if m.Channels == nil {
		m.Channels = make(map[string][]defs.MessageData)
	}
	m.Channels[chName] = append(m.Channels[chName], msgData)
	return uint64(len(m.Channels[chName])), nil
}
