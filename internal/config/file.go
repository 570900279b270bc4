package config

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

// fileRoot is the schema of a run configuration file. Every attribute is
// optional; unknown attributes are rejected by the decoder.
//
//	nucl        = "contigs.fasta"
//	mode        = "blastn"
//	minlen      = 1500
//	augustus_sp = "fusarium"
type fileRoot struct {
	Nucl            *string `hcl:"nucl,optional"`
	Prot            *string `hcl:"prot,optional"`
	GFF3            *string `hcl:"gff3,optional"`
	BlastOut        *string `hcl:"blastout,optional"`
	SwissProtDB     *string `hcl:"spdb,optional"`
	Prefix          *string `hcl:"prefix,optional"`
	WorkDir         *string `hcl:"workdir,optional"`
	MinLen          *int    `hcl:"minlen,optional"`
	Mode            *string `hcl:"mode,optional"`
	EValue          *string `hcl:"evalue,optional"`
	CPUs            *int    `hcl:"cpus,optional"`
	AugustusSpecies *string `hcl:"augustus_sp,optional"`
}

// LoadFile overlays the attributes set in the HCL file at path onto c.
// Attributes absent from the file leave c untouched.
func LoadFile(path string, c *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return &failure.ConfigurationError{Field: "config", Message: "parsing " + path, Cause: diags}
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return &failure.ConfigurationError{Field: "config", Message: "decoding " + path, Cause: diags}
	}

	setString(&c.Nucl, root.Nucl)
	setString(&c.Prot, root.Prot)
	setString(&c.GFF3, root.GFF3)
	setString(&c.BlastOut, root.BlastOut)
	setString(&c.SwissProtDB, root.SwissProtDB)
	setString(&c.Prefix, root.Prefix)
	setString(&c.WorkDir, root.WorkDir)
	setString(&c.EValue, root.EValue)
	setString(&c.AugustusSpecies, root.AugustusSpecies)
	if root.MinLen != nil {
		c.MinLen = *root.MinLen
	}
	if root.CPUs != nil {
		c.CPUs = *root.CPUs
	}
	if root.Mode != nil {
		m, err := ParseMode(*root.Mode)
		if err != nil {
			return err
		}
		c.Mode = m
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
