// Command savo renders an offline audio visualization: it analyzes one
// recording, asks Gemini for timed commentary, composites the layered video,
// and muxes the original audio back in. Subcommands cover analysis-only
// runs, render history, and configuration management.
package main
