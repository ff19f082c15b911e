// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package supervisor provides process supervision for Cinematch using suture v4.

The tree groups long-running services into three layers:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   └── SnapshotMaintenanceService (if SNAPSHOT_ENABLED)
	├── ModelSupervisor ("model-layer")
	│   └── RecommendService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed trainer is restarted inside the model layer while the API layer
keeps serving the last activated model.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddModelService(services.NewRecommendService(engine, svcCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	return tree.Serve(ctx)

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds.
Once the counter exceeds FailureThreshold, restarts wait FailureBackoff.
Services return nil to stop for good and an error to be restarted.

# What Is NOT Supervised

DuckDB and BadgerDB are embedded libraries opened and closed by main.
Only their periodic maintenance runs under the tree.
*/
package supervisor
