/*
Package reports publishes provisioning setup reports to content-addressed sinks.

A report is the JSON rendering of an orchestrator SetupReport. Each sink stores
the bytes under the SHA-256 of the content, so re-publishing the same report is
idempotent and the returned ContentID can be handed to an operator as a stable
reference.

# Sinks

  - file:///var/lib/provisioner/reports - local directory, one file per report
  - s3://[KEY:SECRET@]bucket/prefix?region=eu-west-1&endpoint=minio:9000 - S3 or compatible

Several sinks can be combined with NewMultiSink. Stores go to every available
sink and fetches return the first hit.

# Usage

	sink, err := reports.NewMultiSink(p.Reports, logger)
	if err != nil {
		return err
	}
	id, err := sink.Store(ctx, reportJSON)

Sinks are optional. Publishing failures are logged by the orchestrator and never
affect the outcome of a trigger.
*/
package reports
