package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kilianp07/tariffopt/core/model"
)

var errMissingAppliances = errors.New(`missing "appliances" key`)

// applianceDoc is the on-disk shape of the appliance list.
type applianceDoc struct {
	Appliances *[]model.Appliance `json:"appliances"`
}

func encodeTariff(t model.TariffTable, indent bool) ([]byte, error) {
	return encode(t, indent)
}

func encodeAppliances(apps []model.Appliance, indent bool) ([]byte, error) {
	if apps == nil {
		apps = []model.Appliance{}
	}
	return encode(applianceDoc{Appliances: &apps}, indent)
}

func encode(v any, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "    ")
	}
	return json.Marshal(v)
}

func decodeTariff(b []byte) (model.TariffTable, error) {
	var t model.TariffTable
	if err := json.Unmarshal(b, &t); err != nil {
		return model.TariffTable{}, fmt.Errorf("decode tariff: %w", err)
	}
	return t, nil
}

func decodeAppliances(b []byte) ([]model.Appliance, error) {
	var doc applianceDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode appliances: %w", err)
	}
	if doc.Appliances == nil {
		return nil, errMissingAppliances
	}
	return *doc.Appliances, nil
}
