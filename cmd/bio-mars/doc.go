/*
Command bio-mars rotates circular sequences (plasmids, mitochondrial or viral
genomes) to a common starting position, so that they can be aligned with a
linear multiple sequence aligner.

Usage:

  bio-mars rotate [flags] input.fa output.fa
  bio-mars matrix [flags] input.fa output.tsv

rotate writes every input record rotated left by the chosen number of
residues, with the header ">ID (rotated N bases)". Optionally it also writes
the guide tree (-tree, Newick format) and the distance matrix (-matrix, TSV).
A matrix written earlier can be reused with -load-matrix, which skips the
comparison phase.

matrix only computes the matrix of circular edit distances and rotations
between every ordered pair of sequences.

Inputs may be compressed (.gz, .zst, ...). Outputs ending in .gz are gzipped.
Paths may be local or s3://.
*/
package main
