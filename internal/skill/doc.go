// Package skill defines declarative review rule-sets ("skills") and loads
// them from YAML files.
//
// A skill has triggers (file extensions or path substrings) that decide
// whether it applies to a diff, and an ordered list of rules. Rules with a
// pattern are regular expressions run by the engine against added lines;
// rules with a check carry natural-language guidance for a model-based
// reviewer and are never evaluated locally.
//
// [Validate] gates every definition before use and reports distinct errors
// for missing triggers, duplicate rule ids and invalid patterns.
// [Loader.LoadSkills] isolates failures per file: a broken skill file is
// logged and skipped without affecting the others.
//
// Skill file format:
//
//	name: security-patterns
//	version: "1.0.0"
//	description: Flags hardcoded credentials.
//	triggers:
//	  - file_extension: [".go", ".py"]
//	  - path_contains: ["config"]
//	rules:
//	  - id: hardcoded-secret
//	    severity: critical
//	    pattern: 'password\s*=\s*"[^"]+"'
//	    message: Possible hardcoded credential.
//	prompts:
//	  additional_context: Treat credential-like values as sensitive.
package skill
