// Package processors contains the content processors shipped with webtree.
//
// Each processor is a plugin.Plugin of type processor and implements
// page.Processor. Pages select them per block with "format:" options, e.g.
// "--- name:content format:template,markdown,highlight".
package processors
