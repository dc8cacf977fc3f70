// Package generation implements the study-material generation pipeline:
// it renders prompts, invokes a language-model provider through a narrow
// adapter interface, parses and validates the semi-structured response,
// and persists the results while reporting progress and honoring
// cooperative cancellation. It abstracts the details of LLM API
// integration behind the Provider interface so the pipeline never couples
// to a specific vendor.
package generation
