// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings, which factories decode into typed structs.
//
// Storage backends and metrics sinks are both built this way:
//
//	reg := factory.NewRegistry[store.Repository]()
//	reg.Register("jsonfile", func(conf map[string]any) (store.Repository, error) {
//	    var c struct{ Dir string `json:"dir"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return storage.NewJSONFileStore(c.Dir, log)
//	})
//	repo, err := reg.Create(factory.ModuleConfig{Type: "jsonfile", Conf: map[string]any{"dir": "data"}})
package factory
