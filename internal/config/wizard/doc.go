// Package wizard provides an interactive configuration wizard for srxgate.
//
// The wizard uses charmbracelet/huh forms to collect the appliance endpoint,
// interfaces, zones, retry policy and usage archive settings. RunWizard
// returns a WizardResult; BuildConfig turns it into a config.Config and
// WriteConfig writes the YAML file.
package wizard
