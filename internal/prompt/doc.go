// Package prompt renders the outline and batch request texts from
// text/template sources. Built-in templates are embedded; config may point
// either at a replacement file.
package prompt
