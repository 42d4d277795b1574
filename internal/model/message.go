package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound messages are flat JSON objects of the form {action, ...}.
// DecodeAction turns one into a closed variant so rule handlers never
// see untyped payloads.

var ErrUnknownAction = errors.New("unknown action")

// Action is one decoded inbound message.
type Action interface {
	isAction()
}

type StartBattleAction struct{}

type FireAction struct {
	Weapon      string
	TargetColor string
}

type PurchaseAction struct {
	Item string
}

type ReloadAction struct {
	Weapon string
}

type LeaveAction struct{}

// GPSUpdateAction carries a raw fix. Nil coordinates are the explicit
// "no GPS" signal.
type GPSUpdateAction struct {
	Latitude  *float64
	Longitude *float64
	Accuracy  *float64
}

func (StartBattleAction) isAction() {}
func (FireAction) isAction()        {}
func (PurchaseAction) isAction()    {}
func (ReloadAction) isAction()      {}
func (LeaveAction) isAction()       {}
func (GPSUpdateAction) isAction()   {}

type rawAction struct {
	Action      string   `json:"action"`
	Weapon      string   `json:"weapon"`
	TargetColor string   `json:"targetColor"`
	Item        string   `json:"item"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Accuracy    *float64 `json:"accuracy"`
}

// DecodeAction parses one inbound frame. Unparsable frames and unknown
// actions return an error; callers log and ignore them.
func DecodeAction(data []byte) (Action, error) {
	var raw rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse action: %w", err)
	}

	switch raw.Action {
	case "startBattle":
		return StartBattleAction{}, nil
	case "fire":
		return FireAction{Weapon: raw.Weapon, TargetColor: raw.TargetColor}, nil
	case "purchase":
		return PurchaseAction{Item: raw.Item}, nil
	case "reload":
		return ReloadAction{Weapon: raw.Weapon}, nil
	case "leave":
		return LeaveAction{}, nil
	case "gpsUpdate":
		return GPSUpdateAction{Latitude: raw.Latitude, Longitude: raw.Longitude, Accuracy: raw.Accuracy}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, raw.Action)
	}
}
